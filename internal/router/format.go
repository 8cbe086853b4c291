package router

import (
	"fmt"
	"strings"

	"github.com/joingate/joingate/internal/model"
)

// noticeMarker tags the pre-notification so the manual override can
// recognize a quoted copy of it.
const noticeMarker = "[join request]"

// FormatNotice renders the fixed-format pre-notification for a join
// request. The first four lines are load-bearing: ParseNotice reads the
// nickname from line 2 and the handle from line 4. Level and comment are
// appended only when present.
func FormatNotice(p model.Profile, req model.JoinRequest) string {
	var b strings.Builder
	b.WriteString(noticeMarker + " reply approve/reject:\n")
	fmt.Fprintf(&b, "nickname: %s\n", p.Nickname)
	fmt.Fprintf(&b, "user: %s\n", req.UserID)
	fmt.Fprintf(&b, "handle: %s", req.Handle)
	if p.Level != nil {
		fmt.Fprintf(&b, "\nlevel: %d", *p.Level)
	}
	if req.Comment != "" {
		b.WriteString("\n" + req.Comment)
	}
	return b.String()
}
