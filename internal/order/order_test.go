package order

import "testing"

func TestParseStage(t *testing.T) {
	cases := []struct {
		in   string
		want Stage
		ok   bool
	}{
		{"Pending", StagePending, true},
		{"pending", StagePending, true},
		{"To Ship", StageToShip, true},
		{"toship", StageToShip, true},
		{" Confirmed ", StageConfirmed, true},
		{"COMPLETED", StageCompleted, true},
		{"Rejected", StageRejected, true},
		{"shipped", StageShipped, true},
		{"delivered", StageDelivered, true},
		{"", "", false},
		{"Cancelled", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStage(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStage(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestConfirmedFoldsIntoToShip(t *testing.T) {
	if got := StageConfirmed.Bucket(); got != StageToShip {
		t.Fatalf("Confirmed bucket = %s, want %s", got, StageToShip)
	}
	for _, stage := range Buckets() {
		if stage.Bucket() != stage {
			t.Errorf("bucket stage %s must map to itself, got %s", stage, stage.Bucket())
		}
	}
}

func TestTerminalStages(t *testing.T) {
	for _, stage := range []Stage{StageRejected, StageCompleted} {
		if !stage.Terminal() {
			t.Errorf("%s must be terminal", stage)
		}
	}
	for _, stage := range []Stage{StagePending, StageConfirmed, StageToShip, StageShipped, StageDelivered} {
		if stage.Terminal() {
			t.Errorf("%s must not be terminal", stage)
		}
	}
}

func TestEdgeToAllowsOnlyDeclaredSuccessors(t *testing.T) {
	legal := map[Stage][]Stage{
		StagePending:   {StageConfirmed, StageRejected},
		StageToShip:    {StageShipped},
		StageShipped:   {StageDelivered},
		StageDelivered: {StageCompleted},
	}
	all := []Stage{StagePending, StageConfirmed, StageToShip, StageShipped, StageDelivered, StageCompleted, StageRejected}
	for _, from := range all {
		allowed := map[Stage]bool{}
		for _, to := range legal[from.Bucket()] {
			allowed[to] = true
		}
		for _, to := range all {
			edge, ok := EdgeTo(from, to)
			if ok != allowed[to] {
				t.Errorf("EdgeTo(%s, %s) ok = %v, want %v", from, to, ok, allowed[to])
			}
			if ok && (edge.From != from.Bucket() || edge.To != to) {
				t.Errorf("EdgeTo(%s, %s) returned edge %s -> %s", from, to, edge.From, edge.To)
			}
		}
	}
}

func TestEdgeForAction(t *testing.T) {
	cases := []struct {
		stage  Stage
		action Action
		to     Stage
		ok     bool
	}{
		{StagePending, ActionApprove, StageConfirmed, true},
		{StagePending, ActionReject, StageRejected, true},
		{StageConfirmed, ActionShip, StageShipped, true}, // Confirmed acts as To Ship
		{StageToShip, ActionShip, StageShipped, true},
		{StageShipped, ActionDeliver, StageDelivered, true},
		{StageDelivered, ActionComplete, StageCompleted, true},
		{StagePending, ActionShip, "", false},
		{StageCompleted, ActionComplete, "", false},
		{StageRejected, ActionApprove, "", false},
	}
	for _, tc := range cases {
		edge, ok := EdgeForAction(tc.stage, tc.action)
		if ok != tc.ok {
			t.Errorf("EdgeForAction(%s, %s) ok = %v, want %v", tc.stage, tc.action, ok, tc.ok)
			continue
		}
		if ok && edge.To != tc.to {
			t.Errorf("EdgeForAction(%s, %s) to = %s, want %s", tc.stage, tc.action, edge.To, tc.to)
		}
	}
}
