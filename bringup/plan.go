// Package bringup enforces the initialization ordering contract of the
// interrupt path: the trigger is configured and the shared resource installed
// before the line is unmasked. Unmasking earlier admits a handler that runs
// against an empty resource slot.
package bringup

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	ErrOrderViolation = errors.New("bringup: step out of order")
	ErrUnknownStep    = errors.New("bringup: unknown step")
	ErrRepeatedStep   = errors.New("bringup: step repeated")
	ErrCycle          = errors.New("bringup: plan has a cycle")
)

type Step string

const (
	ConfigureTrigger Step = "configure-trigger"
	EnableSource     Step = "enable-source"
	InstallResource  Step = "install-resource"
	SetVector        Step = "set-vector"
	Unmask           Step = "unmask"
)

type stepNode struct {
	step Step
	id   int64
}

func (n *stepNode) ID() int64 {
	return n.id
}

// Plan is a set of steps and the steps each one must follow.
type Plan struct {
	graph *multi.DirectedGraph
	nodes map[Step]*stepNode
	after map[Step][]Step
}

func NewPlan() *Plan {
	return &Plan{
		graph: multi.NewDirectedGraph(),
		nodes: map[Step]*stepNode{},
		after: map[Step][]Step{},
	}
}

// Default returns the interrupt bring-up contract:
//
//	configure-trigger -> enable-source -> install-resource -> set-vector -> unmask
//
// with unmask additionally depending on every earlier step directly.
func Default() *Plan {
	p := NewPlan()
	p.Require(ConfigureTrigger)
	p.Require(EnableSource, ConfigureTrigger)
	p.Require(InstallResource, ConfigureTrigger)
	p.Require(SetVector, InstallResource)
	p.Require(Unmask, ConfigureTrigger, EnableSource, InstallResource, SetVector)
	return p
}

func (p *Plan) makeNode(step Step) *stepNode {
	if node, ok := p.nodes[step]; ok {
		return node
	}
	node := &stepNode{step: step, id: int64(len(p.nodes))}
	p.nodes[step] = node
	p.graph.AddNode(node)
	return node
}

// Require adds step to the plan, to run after every step in after.
func (p *Plan) Require(step Step, after ...Step) {
	to := p.makeNode(step)
	for _, prev := range after {
		from := p.makeNode(prev)
		p.graph.SetLine(p.graph.NewLine(from, to))
		p.after[step] = append(p.after[step], prev)
	}
}

func (p *Plan) Has(step Step) bool {
	_, ok := p.nodes[step]
	return ok
}

// Prerequisites returns the steps that must precede step.
func (p *Plan) Prerequisites(step Step) []Step {
	return append([]Step(nil), p.after[step]...)
}

// Order returns the steps in an order satisfying every requirement. Steps
// with no constraint between them keep the order they were added in.
func (p *Plan) Order() ([]Step, error) {
	sorted, err := topo.SortStabilized(p.graph, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].ID() < nodes[j].ID()
		})
	})
	if err != nil {
		var u topo.Unorderable
		if errors.As(err, &u) {
			var cycles []string
			for _, component := range u {
				var names []string
				for _, n := range component {
					names = append(names, string(n.(*stepNode).step))
				}
				sort.Strings(names)
				cycles = append(cycles, strings.Join(names, ","))
			}
			return nil, fmt.Errorf("%w: [%s]", ErrCycle, strings.Join(cycles, "] ["))
		}
		return nil, err
	}

	steps := make([]Step, len(sorted))
	for i, n := range sorted {
		steps[i] = n.(*stepNode).step
	}
	return steps, nil
}

// Validate checks that seq runs each step once and only after its
// prerequisites. Steps of the plan missing from seq are allowed; the
// Sequencer reports those.
func (p *Plan) Validate(seq []Step) error {
	done := map[Step]bool{}
	for _, step := range seq {
		if err := p.check(step, done); err != nil {
			return err
		}
		done[step] = true
	}
	return nil
}

func (p *Plan) check(step Step, done map[Step]bool) error {
	if !p.Has(step) {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	if done[step] {
		return fmt.Errorf("%w: %s", ErrRepeatedStep, step)
	}
	var missing []string
	for _, prev := range p.after[step] {
		if !done[prev] {
			missing = append(missing, string(prev))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s before %s", ErrOrderViolation, step, strings.Join(missing, ", "))
	}
	return nil
}
