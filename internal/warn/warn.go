package warn

import "fmt"

// Warning is a non-fatal condition recorded by a pipeline stage.
// Row is -1 for table-level conditions.
type Warning struct {
	Stage string
	Row   int
	Col   string
	Msg   string
}

func Table(stage, col, format string, args ...any) Warning {
	return Warning{Stage: stage, Row: -1, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func RowLevel(stage string, row int, col, format string, args ...any) Warning {
	return Warning{Stage: stage, Row: row, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Row < 0 {
		if w.Col == "" {
			return fmt.Sprintf("[%s] %s", w.Stage, w.Msg)
		}
		return fmt.Sprintf("[%s] col=%q %s", w.Stage, w.Col, w.Msg)
	}
	if w.Col == "" {
		return fmt.Sprintf("[%s] row=%d %s", w.Stage, w.Row, w.Msg)
	}
	return fmt.Sprintf("[%s] row=%d col=%q %s", w.Stage, w.Row, w.Col, w.Msg)
}

// CountByStage groups warnings for the end-of-run summary.
func CountByStage(ws []Warning) map[string]int {
	out := map[string]int{}
	for _, w := range ws {
		out[w.Stage]++
	}
	return out
}
