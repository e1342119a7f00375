// README: Rating model; one immutable score per rider per ride.
package rating

import (
	"time"

	"ridehail/internal/types"
)

type Rating struct {
	ID         types.ID  `json:"id"`
	RideID     types.ID  `json:"ride_id"`
	FromUserID types.ID  `json:"from_user_id"`
	ToUserID   types.ID  `json:"to_user_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type raterKey struct {
	rideID types.ID
	from   types.ID
}
