package classifier

import (
	"fmt"
	"math"

	"github.com/huangsam/lakerisk/schema"
)

// encode turns one classifier row into the model's transformed feature vector.
func encode(features []TransformedFeature, row *schema.ClassifierRow, dst []float64) error {
	for i, f := range features {
		switch f.Kind {
		case schema.NumericColumn:
			v, ok := row.Numeric(f.Column)
			if !ok {
				return fmt.Errorf("unknown numeric column %q", f.Column)
			}
			dst[i] = (v - f.Mean) / f.Scale
		case schema.CategoricalColumn:
			v, ok := row.Categorical(f.Column)
			if !ok {
				return fmt.Errorf("unknown categorical column %q", f.Column)
			}
			if v == f.Category {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	}
	return nil
}

// margin walks every tree and returns the summed raw output.
func margin(trees []Tree, x []float64) float64 {
	var sum float64
	for _, t := range trees {
		sum += walk(t.Nodes, x)
	}
	return sum
}

func walk(nodes []Node, x []float64) float64 {
	i := 0
	for {
		n := nodes[i]
		if n.Leaf {
			return n.Value
		}
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			i = n.Missing
		case v < n.Threshold:
			i = n.Yes
		default:
			i = n.No
		}
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
