package console

import (
	"fmt"
	"io"

	"gamble3000/internal/game/slot"
)

// WriteReport prints an RTP report under a title.
func WriteReport(w io.Writer, title string, rep slot.Report) error {
	_, err := fmt.Fprintf(w,
		"%s\n  trials:        %d\n  RTP:           %.4f%%\n  hit frequency: %.4f%%\n  3-of-a-kind:   %d\n  consolation:   %d\n",
		title,
		rep.Trials,
		rep.RTP()*100,
		rep.HitFrequency()*100,
		rep.ByKind[slot.OutcomeThreeOfAKind],
		rep.ByKind[slot.OutcomeConsolation],
	)
	return err
}
