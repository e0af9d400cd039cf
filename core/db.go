package core

import "context"

// Pinger is implemented by stores that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Direction returns the ordering as a sort direction (1 | -1), as used by document stores.
func (ord DBOrdering) Direction() int {
	if ord.Ascending {
		return 1
	}
	return -1
}
