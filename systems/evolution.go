package systems

import (
	"github.com/pthm-cable/evolenia/components"
)

var segregationSalts = [4]uint32{
	SaltSegregationPosX, SaltSegregationNegX, SaltSegregationPosY, SaltSegregationNegY,
}

// EvolutionStage advances mass, energy and both genomes for rows [y0, y1).
// It reads only committed buffers plus velocity and writes only the next
// buffers, so any row partition gives identical results.
func EvolutionStage(f *Field, k *Kernel, p *Params, frame uint32, y0, y1 int) {
	w, h := f.W, f.H
	mass, energy := f.Mass(), f.Energy()
	genome, mut := f.GenomeA(), f.GenomeB()
	res := f.Resource()
	vx, vy := f.vx, f.vy

	outMass, outEnergy := f.MassNext(), f.EnergyNext()
	outGenome, outMut := f.GenomeANext(), f.GenomeBNext()

	eps := p.LiveEpsilon
	radiusNorm := p.RMax

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mass[i]
			g := genome[i]

			// Dead cell with nothing nearby stays inert
			if m < eps && p.EarlyExit && !k.AnyAlive(mass, w, h, x, y, eps) {
				outMass[i] = 0
				outEnergy[i] = energy[i]
				outGenome[i] = g
				outMut[i] = mut[i]
				continue
			}

			// Growth. A dead cell that perceives nothing does not grow, but
			// still takes inflow below.
			u := k.Density(mass, w, h, x, y, g.R)
			var mp float32
			if m >= eps || u >= eps {
				sigma := g.Sigma
				if sigma < p.SigmaMin {
					sigma = p.SigmaMin
				}
				growth := gaussian(u-g.Mu, sigma)
				mp = clamp01(m + p.DT*(2*growth-1))
			}

			// Metabolism
			rn := g.R / radiusNorm
			agg2 := g.Agg * g.Agg
			cost := (g.Complexity()*p.KComplexity +
				p.KRadius*rn*rn +
				agg2*p.KAgg*p.PredationFactor +
				agg2*g.Agg*p.KInterference*p.PredationFactor) * m
			absorb := res[i] * m * (p.KBase + (1-g.Agg)*p.KPreyBonus)
			e := clamp01(energy[i] + absorb - cost)

			// Starvation
			if e <= p.StarvationThreshold {
				mp *= 1 - p.StarvationDecay*(1-e/p.StarvationThreshold)
			}

			// Flux-limited advection
			fl := advect(vx, vy, mass, w, h, x, y, mp, p.AdvectionCap)
			mNew := clamp01(mp + fl.in[0] + fl.in[1] + fl.in[2] + fl.in[3] - fl.out)

			// Segregation: the last successful direction wins
			gNew := g
			mutNew := mut[i]
			for d, in := range fl.in {
				if in <= p.SegregationEpsilon {
					continue
				}
				prob := in / (mNew + p.SegregationEpsilon)
				if Rand01(i, frame, p.Seed, segregationSalts[d]) < prob {
					gNew = genome[fl.neighbour[d]]
					mutNew = mut[fl.neighbour[d]]
				}
			}

			if mNew > p.MutationLiveThreshold {
				gNew, mutNew = mutate(gNew, mutNew, i, frame, p)
			}

			outMass[i] = mNew
			outEnergy[i] = e
			outGenome[i] = gNew
			outMut[i] = mutNew
		}
	}
}

// flux is the advective exchange of one cell with its four neighbours.
type flux struct {
	in        [4]float32 // inflow per direction
	neighbour [4]int     // neighbour index per direction
	out       float32    // total outflow
}

// advect computes the flux-limited exchange of cell (x, y) whose post-growth
// mass is mp. Outflow per direction is capped at mp/limit and inflow at
// the neighbour's committed mass over limit.
func advect(vx, vy, mass []float32, w, h, x, y int, mp, limit float32) flux {
	var fl flux
	i := y*w + x
	sx, sy := vx[i], vy[i]
	outCap := mp / limit
	for d, dir := range cardinals {
		dx, dy := float32(dir[0]), float32(dir[1])
		n := wrap(y+dir[1], h)*w + wrap(x+dir[0], w)
		fl.neighbour[d] = n
		fl.out += clampFloat(sx*dx+sy*dy, 0, outCap)
		fl.in[d] = clampFloat(-(vx[n]*dx + vy[n]*dy), 0, mass[n]/limit)
	}
	return fl
}

// mutate perturbs every gene by a symmetric draw scaled by the cell's own
// mutation rate, then steps the rate itself.
func mutate(g components.GenomeA, mut float32, i int, frame uint32, p *Params) (components.GenomeA, float32) {
	amount := mut * p.MutationMultiplier
	g.R += symmetric(Rand01(i, frame, p.Seed, SaltMutateR)) * amount * p.GeneScale[0]
	g.Mu += symmetric(Rand01(i, frame, p.Seed, SaltMutateMu)) * amount * p.GeneScale[1]
	g.Sigma += symmetric(Rand01(i, frame, p.Seed, SaltMutateSigma)) * amount * p.GeneScale[2]
	g.Agg += symmetric(Rand01(i, frame, p.Seed, SaltMutateAgg)) * amount * p.GeneScale[3]
	g = p.ClampGenome(g)

	mut += symmetric(Rand01(i, frame, p.Seed, SaltMutateRate)) * p.MutStep
	mut = clampFloat(mut, p.MutMin+p.MutMargin, p.MutMax-p.MutMargin)
	return g, mut
}
