package notify

import (
	"net/http"

	"github.com/mytheresa/storefront/app/web"
)

// HandleDrain answers the pending notices, oldest first, and empties the
// queue.
func (q *Queue) HandleDrain(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, http.StatusOK, q.Drain())
}
