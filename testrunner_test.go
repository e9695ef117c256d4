package gremlin

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "ticks": 3},
			{"action": "drag", "fromX": 1, "fromY": 2, "toX": 3, "toY": 4, "ticks": 6}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Ticks != 3 {
		t.Error("step 2 mismatch")
	}
	if st := runner.steps[3]; st.FromX != 1 || st.ToY != 4 || st.Ticks != 6 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"no steps", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "teleport"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTestScript([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunner_ClickWaitScreenshot(t *testing.T) {
	s := testScene()
	g := mustSpawn(t, s, testDefinition(t, nil), Vec2{})
	var shots []string
	s.SetScreenshotHandler(func(label string) { shots = append(shots, label) })

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "click", "x": 10, "y": 10},
		{"action": "wait", "ticks": 2},
		{"action": "screenshot", "label": "poked"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)

	// Ticks 1-2 inject the click, 3-4 wait, 5 takes the screenshot.
	tickN(s, 4, tick)
	if len(shots) != 0 || runner.Done() {
		t.Fatalf("shots = %v done = %v after 4 ticks", shots, runner.Done())
	}
	if g.State().Kind() != StateReacting {
		t.Errorf("state = %v, want Reacting", g.State().Kind())
	}
	s.Tick(tick, nil)
	if len(shots) != 1 || shots[0] != "poked" {
		t.Errorf("shots = %v, want [poked]", shots)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunner_WaitsForInjectQueue(t *testing.T) {
	s := testScene()
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 50, "toY": 50, "ticks": 4},
		{"action": "move", "x": 1, "y": 1}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)

	s.Tick(tick, nil) // drag queued, press consumed
	if s.Injected() != 3 {
		t.Fatalf("Injected = %d, want 3", s.Injected())
	}
	tickN(s, 3, tick) // moves and release drain; the move step is not reached yet
	if runner.Done() {
		t.Fatal("runner done before the move step")
	}
	s.Tick(tick, nil) // move queued and consumed
	s.Tick(tick, nil)
	if !runner.Done() || s.Injected() != 0 {
		t.Errorf("done = %v injected = %d, want done and drained", runner.Done(), s.Injected())
	}
}

func TestRunner_ScreenshotWithoutHandler(t *testing.T) {
	s := testScene()
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "screenshot", "label": "x"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	s.Tick(tick, nil)
	if !runner.Done() {
		t.Error("runner should be done")
	}
}
