package interview

import (
	"errors"
	"testing"
	"time"
)

func TestTranscriptSequenceNumbers(t *testing.T) {
	tr := NewTranscript(&fakeSink{}, testLogger())
	defer tr.Close()

	first := tr.Append(RoleAssistant, "Merhaba")
	second := tr.Append(RoleUser, "Merhaba, ben Ayşe")
	third := tr.Append(RoleAssistant, "Deneyiminizden bahseder misiniz?")

	if first.Seq != 1 || second.Seq != 2 || third.Seq != 3 {
		t.Fatalf("expected seq 1,2,3 got %d,%d,%d", first.Seq, second.Seq, third.Seq)
	}

	turns := tr.Turns()
	for i := 1; i < len(turns); i++ {
		if turns[i].Seq <= turns[i-1].Seq {
			t.Fatalf("sequence not strictly increasing: %d then %d", turns[i-1].Seq, turns[i].Seq)
		}
	}
}

func TestTranscriptBuffersUntilInterviewKnown(t *testing.T) {
	sink := &fakeSink{}
	tr := NewTranscript(sink, testLogger())
	defer tr.Close()

	tr.Append(RoleAssistant, "soru 1")
	tr.Append(RoleUser, "cevap 1")

	time.Sleep(20 * time.Millisecond)
	if n := sink.count(); n != 0 {
		t.Fatalf("expected no mirror writes before interview ID, got %d", n)
	}

	tr.SetInterviewID(7)
	waitFor(t, time.Second, func() bool { return sink.count() == 2 })

	calls := sink.all()
	if calls[0].turn.Seq != 1 || calls[1].turn.Seq != 2 {
		t.Fatalf("flush did not preserve sequence numbers: %+v", calls)
	}
	for _, c := range calls {
		if c.interviewID != 7 {
			t.Fatalf("expected interview ID 7, got %d", c.interviewID)
		}
	}

	// Turns appended after linking mirror directly.
	tr.Append(RoleAssistant, "soru 2")
	waitFor(t, time.Second, func() bool { return sink.count() == 3 })
	if got := sink.all()[2].turn.Seq; got != 3 {
		t.Fatalf("expected seq 3 after flush, got %d", got)
	}
}

func TestTranscriptMirrorFailureDoesNotBlock(t *testing.T) {
	sink := &fakeSink{err: errors.New("boom")}
	tr := NewTranscript(sink, testLogger())
	defer tr.Close()
	tr.SetInterviewID(3)

	turn := tr.Append(RoleUser, "cevap")
	if turn.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", turn.Seq)
	}
	if len(tr.Turns()) != 1 {
		t.Fatal("turn should be recorded locally despite mirror failure")
	}
}

func TestTranscriptSetInterviewIDOnce(t *testing.T) {
	sink := &fakeSink{}
	tr := NewTranscript(sink, testLogger())
	defer tr.Close()

	tr.Append(RoleAssistant, "soru")
	tr.SetInterviewID(5)
	tr.SetInterviewID(9) // ignored

	waitFor(t, time.Second, func() bool { return sink.count() == 1 })
	if got := sink.all()[0].interviewID; got != 5 {
		t.Fatalf("expected first interview ID to win, got %d", got)
	}
}
