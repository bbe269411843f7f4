package team

import (
	"fmt"
	"math"
)

//Classify returns the team of a player from its palette: every palette color
//votes for the team owning its nearest reference color and the most voted team
//wins. An empty palette yields UnknownTeam, so does an empty References.
func Classify(p Palette, refs References) int {
	labs := make([]Lab, len(p))
	for i, c := range p {
		labs[i] = ToLab(c)
	}

	team, err := ClassifyLab(labs, refs.lab, refs.perTeam)
	if err != nil {
		return UnknownTeam
	}
	return team
}

//ClassifyAll classifies every palette, keeping the players order
func ClassifyAll(palettes []Palette, refs References) []int {
	teams := make([]int, len(palettes))
	for i, p := range palettes {
		teams[i] = Classify(p, refs)
	}
	return teams
}

//ClassifyLab is Classify on colors already converted to L*a*b*.
//refs is grouped by team, colorsPerTeam consecutive entries each.
func ClassifyLab(colors, refs []Lab, colorsPerTeam int) (int, error) {
	if colorsPerTeam < 1 || len(refs) == 0 || len(refs)%colorsPerTeam != 0 {
		return UnknownTeam, fmt.Errorf("ClassifyLab: %d reference colors for %d colors per team: %w", len(refs), colorsPerTeam, ErrColorsPerTeam)
	}

	if len(colors) == 0 {
		return UnknownTeam, nil
	}

	votes := make([]int, len(colors))
	for i, c := range colors {
		votes[i] = Nearest(c, refs) / colorsPerTeam
	}

	return StableMode(votes), nil
}

//Nearest returns the index of the reference closest to c (CIE76), the lowest index on ties
func Nearest(c Lab, refs []Lab) int {
	best, bestDist := -1, math.Inf(1)
	for i, r := range refs {
		if d := DeltaE76(c, r); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

//StableMode returns the most frequent value of votes. On ties the value that
//appears first in votes wins. Empty votes yield UnknownTeam.
func StableMode(votes []int) int {
	counts := make(map[int]int, len(votes))
	order := make([]int, 0, len(votes))
	for _, v := range votes {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	mode, best := UnknownTeam, 0
	for _, v := range order {
		if counts[v] > best {
			mode, best = v, counts[v]
		}
	}
	return mode
}
