package errors

import "fmt"

type AngleRangeError struct {
	Label    string
	Min, Max float64
}

func (err AngleRangeError) Error() string {
	return fmt.Sprintf("%s: angle out of allowed range (%g to %g)", err.Label, err.Min, err.Max)
}

type SideNameError struct {
	Side string
}

func (err SideNameError) Error() string {
	if len(err.Side) == 0 {
		err.Side = "UNKOWN"
	}

	return fmt.Sprintf("no such side %s", err.Side)
}
