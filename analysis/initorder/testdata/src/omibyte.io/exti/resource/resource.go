package resource

type Section struct{}

type Cell[T any] struct {
	v T
}

func (c *Cell[T]) Install(cs *Section, v T) error {
	c.v = v
	return nil
}
