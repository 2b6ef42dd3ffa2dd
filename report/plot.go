package report

import (
	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/actor"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PLOT_SIZE is the width and height of saved plots
const PLOT_SIZE = 6 * vg.Inch

// Paths returns the path of every movable body of the trajectory encoded by x,
// starting at its initial position. Paths are keyed by body index.
func Paths(world *cio.World, params cio.Params, x []float64) (map[int]plotter.XYs, error) {
	states, err := cio.Expand(x, world, params)
	if err != nil {
		return nil, err
	}

	paths := make(map[int]plotter.XYs)
	for i, body := range world.Bodies {
		if body.IsStatic() {
			continue
		}

		path := make(plotter.XYs, 0, len(states)+1)
		path = append(path, plotter.XY{X: body.Initial.Position.X(), Y: body.Initial.Position.Y()})
		for _, state := range states {
			position := state.Bodies[i].Pose.Position
			path = append(path, plotter.XY{X: position.X(), Y: position.Y()})
		}
		paths[i] = path
	}

	return paths, nil
}

// Resample inserts substeps-1 evenly spaced points between every two
// consecutive points of path
func Resample(path plotter.XYs, substeps int) plotter.XYs {
	if substeps <= 1 || len(path) < 2 {
		return append(plotter.XYs(nil), path...)
	}

	fine := make(plotter.XYs, 0, (len(path)-1)*substeps+1)
	for k := 0; k < len(path)-1; k++ {
		from, to := path[k], path[k+1]
		for s := 0; s < substeps; s++ {
			u := float64(s) / float64(substeps)
			fine = append(fine, plotter.XY{X: from.X + u*(to.X-from.X), Y: from.Y + u*(to.Y-from.Y)})
		}
	}

	return append(fine, path[len(path)-1])
}

// Plot draws the body paths of a trajectory and the object goals, the file
// format follows the extension of path. Keyframes are marked, the lines
// between them are sampled every params.Dt.
func Plot(path string, world *cio.World, goals []actor.Pose, params cio.Params, title string, x []float64) error {
	paths, err := Paths(world, params, x)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	for i, body := range world.Bodies {
		xys, ok := paths[i]
		if !ok {
			continue
		}

		line, err := plotter.NewLine(Resample(xys, params.Substeps()))
		if err != nil {
			return errors.Wrapf(err, "plotting %s", body.Name)
		}
		points, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrapf(err, "plotting %s", body.Name)
		}
		line.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		if body.Kind == actor.BodyKindHand {
			line.Dashes = plotutil.Dashes(1)
		}

		p.Add(line, points)
		p.Legend.Add(body.Name, line, points)
	}

	if len(goals) > 0 {
		xys := make(plotter.XYs, len(goals))
		for i, goal := range goals {
			xys[i] = plotter.XY{X: goal.Position.X(), Y: goal.Position.Y()}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrap(err, "plotting goals")
		}
		scatter.GlyphStyle.Shape = draw.CrossGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(5)

		p.Add(scatter)
		p.Legend.Add("goal", scatter)
	}

	if err := p.Save(PLOT_SIZE, PLOT_SIZE, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}

	return nil
}
