package systems

// cardinal directions in the fixed processing order +x, -x, +y, -y.
var cardinals = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// VelocityStage writes the flow field for rows [y0, y1) from committed
// mass and genome A. Velocity is the mass gradient scaled by aggressivity,
// plus a predation push toward lighter neighbours for aggressive cells.
func VelocityStage(f *Field, p *Params, y0, y1 int) {
	w, h := f.W, f.H
	mass := f.Mass()
	genome := f.GenomeA()
	vx, vy := f.vx, f.vy
	push := p.KPred * p.PredationFactor

	for y := y0; y < y1; y++ {
		row := y * w
		up := wrap(y-1, h) * w
		down := wrap(y+1, h) * w
		for x := 0; x < w; x++ {
			i := row + x
			left := wrap(x-1, w)
			right := wrap(x+1, w)

			m := mass[i]
			agg := genome[i].Agg
			gx := (mass[row+right] - mass[row+left]) * 0.5
			gy := (mass[down+x] - mass[up+x]) * 0.5
			ux := gx * agg
			uy := gy * agg

			if agg > p.PredationThreshold && m > p.PredationMass {
				neighbours := [4]int{row + right, row + left, down + x, up + x}
				for d, n := range neighbours {
					mn := mass[n]
					if mn >= m {
						continue
					}
					s := agg * (m - mn) * push
					ux += float32(cardinals[d][0]) * s
					uy += float32(cardinals[d][1]) * s
				}
			}

			vx[i] = clampFloat(ux, -1, 1)
			vy[i] = clampFloat(uy, -1, 1)
		}
	}
}
