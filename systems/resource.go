package systems

// ResourceStage advances the nutrient field for rows [y0, y1): 5-point
// toroidal diffusion, logistic regrowth toward 1, and consumption by the
// mass the evolution stage just wrote.
func ResourceStage(f *Field, p *Params, y0, y1 int) {
	w, h := f.W, f.H
	src := f.Resource()
	dst := f.ResourceNext()
	mass := f.MassNext()

	for y := y0; y < y1; y++ {
		yN := wrap(y-1, h) * w
		yS := wrap(y+1, h) * w
		row := y * w
		for x := 0; x < w; x++ {
			xW := wrap(x-1, w)
			xE := wrap(x+1, w)

			i := row + x
			c := src[i]
			lap := src[yN+x] + src[yS+x] + src[row+xE] + src[row+xW] - 4*c

			dst[i] = clamp01(c + p.Diffusion*lap + p.Feed*(1-c) - c*mass[i]*p.Consumption)
		}
	}
}
