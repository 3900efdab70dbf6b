package tasks

import (
	"fmt"
	"strconv"
	"strings"
)

// Assignee is the create-task "assignedTo" field. The wire format accepts a
// user id (number or numeric string), the string "all" for a bulk fan-out,
// or null/absent for an unassigned task.
type Assignee struct {
	All bool
	ID  *uint
}

func (a *Assignee) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" || s == `""` {
		return nil
	}

	if s == `"all"` {
		a.All = true
		return nil
	}

	s = strings.Trim(s, `"`)
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("assignedTo must be a user id or \"all\"")
	}

	id := uint(n)
	a.ID = &id
	return nil
}
