//Package team assigns players to teams by comparing their shirt colors with
//reference team colors in CIE L*a*b*.
package team

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

//UnknownTeam is returned when a player has no color evidence at all
const UnknownTeam = -1

//UnknownName is the display name of UnknownTeam
const UnknownName = "Unknown"

var (
	//ErrNoTeams is returned when building References without any team
	ErrNoTeams = errors.New("no team colors configured")
	//ErrColorsPerTeam is returned when teams do not all have the same number of colors
	ErrColorsPerTeam = errors.New("every team needs the same, non zero, number of colors")
)

var unknownDisplay = color.RGBA{R: 255, G: 255, B: 255, A: 255}

//Lab is a color in CIE L*a*b* (D65), L in [0, 100]
type Lab struct {
	L float64
	A float64
	B float64
}

//ToLab converts an sRGB color
func ToLab(c color.RGBA) Lab {
	l, a, b := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

//DeltaE76 is the CIE76 color difference: the Euclidean distance in L*a*b*
func DeltaE76(x, y Lab) float64 {
	dl, da, db := x.L-y.L, x.A-y.A, x.B-y.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

//TeamColors is one team as configured: a name and its kit colors as hex strings
//(e.g. outfield players first, then the goalkeeper)
type TeamColors struct {
	Name   string   `mapstructure:"name" json:"name"`
	Colors []string `mapstructure:"colors" json:"colors"`
}

//References is the flat reference color table. Team t owns the indices
//[t*PerTeam, t*PerTeam+PerTeam).
type References struct {
	names   []string
	display []color.RGBA
	rgb     []color.RGBA
	lab     []Lab
	perTeam int
}

//NewReferences builds the reference table, keeping the configured team order
func NewReferences(teams []TeamColors) (References, error) {
	if len(teams) == 0 {
		return References{}, ErrNoTeams
	}

	perTeam := len(teams[0].Colors)
	refs := References{perTeam: perTeam}
	for _, t := range teams {
		if len(t.Colors) == 0 || len(t.Colors) != perTeam {
			return References{}, fmt.Errorf("NewReferences: team '%s' has %d colors, want %d: %w", t.Name, len(t.Colors), perTeam, ErrColorsPerTeam)
		}

		for i, hex := range t.Colors {
			c, err := colorful.Hex(hex)
			if err != nil {
				return References{}, fmt.Errorf("NewReferences: team '%s' color '%s': %w", t.Name, hex, err)
			}
			r, g, b := c.RGB255()
			rgba := color.RGBA{R: r, G: g, B: b, A: 255}
			if i == 0 {
				refs.display = append(refs.display, rgba)
			}
			refs.rgb = append(refs.rgb, rgba)
			refs.lab = append(refs.lab, ToLab(rgba))
		}
		refs.names = append(refs.names, t.Name)
	}

	return refs, nil
}

//Teams returns the number of teams
func (r References) Teams() int {
	return len(r.names)
}

//ColorsPerTeam returns M, the number of reference colors of each team
func (r References) ColorsPerTeam() int {
	return r.perTeam
}

//Lab returns the reference colors in team order
func (r References) Lab() []Lab {
	return r.lab
}

//RGB returns the reference colors as configured
func (r References) RGB() []color.RGBA {
	return r.rgb
}

//Range returns the reference indices [lo, hi) owned by team
func (r References) Range(team int) (int, int) {
	return team * r.perTeam, team*r.perTeam + r.perTeam
}

//Name returns the team name, UnknownName for UnknownTeam or any index out of range
func (r References) Name(team int) string {
	if team < 0 || team >= len(r.names) {
		return UnknownName
	}
	return r.names[team]
}

//Display returns the team's first kit color, white for unknown teams
func (r References) Display(team int) color.RGBA {
	if team < 0 || team >= len(r.display) {
		return unknownDisplay
	}
	return r.display[team]
}
