package monitor

import "testing"

func TestIntervalsForStandardStation(t *testing.T) {
	classifier := ClassifierFunc(func(station string) bool { return false })

	lazy, active := IntervalsFor(classifier, "Some Station")
	if lazy != standardLazyInterval {
		t.Errorf("lazy = %v, want %v", lazy, standardLazyInterval)
	}
	if active != standardActiveInterval {
		t.Errorf("active = %v, want %v", active, standardActiveInterval)
	}
	if active >= lazy {
		t.Error("active interval should be shorter than lazy interval")
	}
}

func TestIntervalsForSpecialStation(t *testing.T) {
	classifier := ClassifierFunc(func(station string) bool { return station == "Hutton Orbital Radio" })

	lazy, active := IntervalsFor(classifier, "Hutton Orbital Radio")
	if lazy != specialLazyInterval {
		t.Errorf("lazy = %v, want %v", lazy, specialLazyInterval)
	}
	if active != specialActiveInterval {
		t.Errorf("active = %v, want %v", active, specialActiveInterval)
	}

	stdLazy, stdActive := IntervalsFor(classifier, "anything else")
	if lazy <= stdLazy || active <= stdActive {
		t.Error("special intervals should be longer than standard ones")
	}
}

func TestIntervalsForNilClassifier(t *testing.T) {
	lazy, active := IntervalsFor(nil, "whatever")
	if lazy != standardLazyInterval || active != standardActiveInterval {
		t.Errorf("nil classifier should yield standard intervals, got (%v, %v)", lazy, active)
	}
}
