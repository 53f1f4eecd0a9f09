// internal/order/order.go
//
// Core vocabulary for the fulfillment lifecycle: the Order model, the Stage
// enumeration, and the legal-transition graph as an explicit table. Everything
// downstream (store, engine, gateway, TUI) speaks in these types.

package order

import "strings"

// Stage names a phase in an order's fulfillment lifecycle. The values match
// the status labels the order service uses on the wire.
type Stage string

const (
	StagePending   Stage = "Pending"
	StageConfirmed Stage = "Confirmed"
	StageToShip    Stage = "ToShip"
	StageShipped   Stage = "Shipped"
	StageDelivered Stage = "Delivered"
	StageCompleted Stage = "Completed"
	StageRejected  Stage = "Rejected"
)

// Order is the unit of work moving through the lifecycle. Fields are fixed at
// creation; only bucket membership changes afterwards.
type Order struct {
	ID              string
	ProductName     string
	Category        string
	Size            string
	Quantity        int
	CustomerName    string
	ShippingAddress string
	TotalPrice      float64
	ImageURL        string
}

// Buckets lists the display buckets in board order. Confirmed is not a bucket:
// confirmed orders render directly in the To Ship list.
func Buckets() []Stage {
	return []Stage{
		StagePending,
		StageToShip,
		StageShipped,
		StageRejected,
		StageDelivered,
		StageCompleted,
	}
}

// Bucket maps a stage to the bucket it is displayed in. Confirmed folds into
// To Ship; every other stage is its own bucket.
func (s Stage) Bucket() Stage {
	if s == StageConfirmed {
		return StageToShip
	}
	return s
}

// Terminal reports whether no further transition leaves the stage.
func (s Stage) Terminal() bool {
	return s == StageRejected || s == StageCompleted
}

// Title returns the operator-facing name for the stage.
func (s Stage) Title() string {
	switch s {
	case StageToShip:
		return "To Ship"
	default:
		return string(s)
	}
}

// ParseStage resolves a stage label case-insensitively, tolerating the
// "to ship" spelling the order service uses in a few responses.
func ParseStage(value string) (Stage, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "")) {
	case "pending":
		return StagePending, true
	case "confirmed":
		return StageConfirmed, true
	case "toship":
		return StageToShip, true
	case "shipped":
		return StageShipped, true
	case "delivered":
		return StageDelivered, true
	case "completed":
		return StageCompleted, true
	case "rejected":
		return StageRejected, true
	}
	return "", false
}

// Action names an operator verb on the orders board.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionShip     Action = "ship"
	ActionDeliver  Action = "deliver"
	ActionComplete Action = "complete"
)

// Edge is one legal transition in the fulfillment graph. From is the bucket
// the order must currently occupy; To is the acknowledged target stage the
// gateway is asked for. The bucket the order lands in is To.Bucket().
type Edge struct {
	From   Stage
	To     Stage
	Action Action
}

// edges is the whole legal graph. Pending has the one side exit to Rejected;
// everything else is a straight line to Completed.
var edges = []Edge{
	{From: StagePending, To: StageConfirmed, Action: ActionApprove},
	{From: StagePending, To: StageRejected, Action: ActionReject},
	{From: StageToShip, To: StageShipped, Action: ActionShip},
	{From: StageShipped, To: StageDelivered, Action: ActionDeliver},
	{From: StageDelivered, To: StageCompleted, Action: ActionComplete},
}

// Edges returns a copy of the legal-transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// EdgeTo finds the edge leading from the given bucket to the target stage.
// The second return is false when no such transition is legal.
func EdgeTo(from Stage, to Stage) (Edge, bool) {
	for _, e := range edges {
		if e.From == from.Bucket() && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgeForAction finds the edge the given operator action triggers from the
// given bucket.
func EdgeForAction(from Stage, action Action) (Edge, bool) {
	for _, e := range edges {
		if e.From == from.Bucket() && e.Action == action {
			return e, true
		}
	}
	return Edge{}, false
}
