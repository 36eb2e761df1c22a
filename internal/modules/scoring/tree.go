// README: Gradient-boosted tree ensemble evaluated over encoded feature vectors.
package scoring

import "fmt"

// A Node represents a splitting decision of the form "x[FeatureIndex] < Threshold ?".
// Leaf children index into the tree's Outputs.
type Node struct {
	FeatureIndex int     `json:"feature_index"`
	Threshold    float64 `json:"threshold"`
	LeftChild    int     `json:"left_child"`
	LeftIsLeaf   bool    `json:"left_is_leaf"`
	RightChild   int     `json:"right_child"`
	RightIsLeaf  bool    `json:"right_is_leaf"`
}

// DecisionTree maps a feature vector to a real number.
type DecisionTree struct {
	Nodes       []Node    `json:"nodes"`
	Outputs     []float64 `json:"outputs"`
	FeatureSize int       `json:"feature_size"`
	Depth       int       `json:"depth"`
}

// Bin drops x down the tree and returns the index of the output it lands in.
// The tree must have passed validate.
func (t *DecisionTree) Bin(x []float64) int {
	cur := t.Nodes[0]
	for {
		if x[cur.FeatureIndex] < cur.Threshold {
			if cur.LeftIsLeaf {
				return cur.LeftChild
			}
			cur = t.Nodes[cur.LeftChild]
		} else {
			if cur.RightIsLeaf {
				return cur.RightChild
			}
			cur = t.Nodes[cur.RightChild]
		}
	}
}

func (t *DecisionTree) Evaluate(x []float64) float64 {
	return t.Outputs[t.Bin(x)]
}

// validate checks indices and that every path reaches a leaf within Depth.
func (t *DecisionTree) validate(featureSize int) error {
	if t.FeatureSize != featureSize {
		return fmt.Errorf("feature size %d, preprocessor produces %d", t.FeatureSize, featureSize)
	}
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	var walk func(idx, depth int) error
	walk = func(idx, depth int) error {
		if depth > t.Depth {
			return fmt.Errorf("path deeper than declared depth %d", t.Depth)
		}
		n := t.Nodes[idx]
		if n.FeatureIndex < 0 || n.FeatureIndex >= featureSize {
			return fmt.Errorf("node %d: feature index %d out of range", idx, n.FeatureIndex)
		}
		children := []struct {
			child int
			leaf  bool
		}{{n.LeftChild, n.LeftIsLeaf}, {n.RightChild, n.RightIsLeaf}}
		for _, c := range children {
			if c.leaf {
				if c.child < 0 || c.child >= len(t.Outputs) {
					return fmt.Errorf("node %d: output index %d out of range", idx, c.child)
				}
				continue
			}
			if c.child <= idx || c.child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d invalid", idx, c.child)
			}
			if err := walk(c.child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0, 1)
}

// An Ensemble outputs BaseScore plus the sum of its trees.
type Ensemble struct {
	BaseScore float64        `json:"base_score"`
	Trees     []DecisionTree `json:"trees"`
}

func (e *Ensemble) Evaluate(x []float64) float64 {
	sum := e.BaseScore
	for i := range e.Trees {
		sum += e.Trees[i].Evaluate(x)
	}
	return sum
}

func (e *Ensemble) validate(featureSize int) error {
	if len(e.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	for i := range e.Trees {
		if err := e.Trees[i].validate(featureSize); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
