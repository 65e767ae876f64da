package bringup

import (
	"fmt"
	"log/slog"

	"omibyte.io/exti/diag"
)

// Sequencer runs bring-up steps and refuses any step whose prerequisites have
// not completed.
type Sequencer struct {
	plan *Plan
	done map[Step]bool
	seq  []Step
	log  *slog.Logger
}

func NewSequencer(plan *Plan, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = diag.Discard()
	}
	return &Sequencer{
		plan: plan,
		done: map[Step]bool{},
		log:  logger,
	}
}

// Do runs fn as step. fn is not called when the step is out of order. A step
// whose fn fails is not marked done.
func (s *Sequencer) Do(step Step, fn func() error) error {
	if err := s.plan.check(step, s.done); err != nil {
		s.log.Error("bring-up step rejected", "step", step, diag.ErrAttr(err))
		return err
	}
	if err := fn(); err != nil {
		return fmt.Errorf("bringup: %s: %w", step, err)
	}
	s.done[step] = true
	s.seq = append(s.seq, step)
	s.log.Debug("bring-up step done", "step", step)
	return nil
}

func (s *Sequencer) Done(step Step) bool {
	return s.done[step]
}

// Completed returns the steps run so far in order.
func (s *Sequencer) Completed() []Step {
	return append([]Step(nil), s.seq...)
}

// Remaining returns the plan's steps not yet run, in plan order.
func (s *Sequencer) Remaining() ([]Step, error) {
	order, err := s.plan.Order()
	if err != nil {
		return nil, err
	}
	var rest []Step
	for _, step := range order {
		if !s.done[step] {
			rest = append(rest, step)
		}
	}
	return rest, nil
}
