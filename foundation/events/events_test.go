package events_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out node events to receivers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling two receivers.", testID)
		{
			evts := events.New()

			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")

			if evts.Count() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have two receivers: %d", failed, testID, evts.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould have two receivers.", success, testID)

			evts.Send("block mined")

			if msg := <-ch1; msg != "block mined" {
				t.Fatalf("\t%s\tTest %d:\tShould receive the event on the first channel: %q", failed, testID, msg)
			}
			if msg := <-ch2; msg != "block mined" {
				t.Fatalf("\t%s\tTest %d:\tShould receive the event on the second channel: %q", failed, testID, msg)
			}
			t.Logf("\t%s\tTest %d:\tShould receive the event on every channel.", success, testID)

			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release a receiver: %v", failed, testID, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest %d:\tShould close a released channel.", failed, testID)
			}
			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not release an unknown receiver.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould release receivers.", success, testID)

			evts.Shutdown()
			if _, open := <-ch2; open || evts.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen a receiver is not reading.", testID)
		{
			evts := events.New()
			ch := evts.Acquire("slow")

			for range 150 {
				evts.Send("event")
			}

			if len(ch) != cap(ch) {
				t.Fatalf("\t%s\tTest %d:\tShould drop events beyond the buffer: %d", failed, testID, len(ch))
			}
			t.Logf("\t%s\tTest %d:\tShould drop events beyond the buffer without blocking.", success, testID)
		}
	}
}
