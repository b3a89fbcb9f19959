package rcflp

import "math"

// Profile summarises how one solution performed over a set of scenarios.
type Profile struct {
	SolutionPath string
	Scenarios    int
	Feasible     int
	MeanCost     float64
	MinCost      float64
	MaxCost      float64
	MeanInfeas   float64
	WorstInfeas  float64
}

func (p Profile) FeasibleShare() float64 {
	if p.Scenarios == 0 {
		return 0
	}
	return float64(p.Feasible) / float64(p.Scenarios)
}

// Profiles groups records by solution, in order of first appearance.
func Profiles(records []Record) []Profile {
	index := make(map[string]int)
	var profiles []Profile
	for _, rec := range records {
		k, ok := index[rec.SolutionPath]
		if !ok {
			k = len(profiles)
			index[rec.SolutionPath] = k
			profiles = append(profiles, Profile{
				SolutionPath: rec.SolutionPath,
				MinCost:      math.Inf(1),
				MaxCost:      math.Inf(-1),
			})
		}
		p := &profiles[k]
		total := rec.Result.Total()
		p.Scenarios++
		if rec.Result.Feasible() {
			p.Feasible++
		}
		p.MeanCost += total
		p.MinCost = math.Min(p.MinCost, total)
		p.MaxCost = math.Max(p.MaxCost, total)
		p.MeanInfeas += rec.Result.InfeasTotal
		p.WorstInfeas = math.Max(p.WorstInfeas, rec.Result.InfeasMax)
	}
	for k := range profiles {
		n := float64(profiles[k].Scenarios)
		profiles[k].MeanCost /= n
		profiles[k].MeanInfeas /= n
	}
	return profiles
}
