package validate_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type newSubmission struct {
	Target string  `json:"target" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Note   string  `json:"-" validate:"max=4"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid model.")
		{
			ns := newSubmission{Target: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", Amount: 1}
			if err := validate.Check(ns); err != nil {
				t.Fatalf("\t%s\tShould be able to validate the model : %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to validate the model.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an invalid model.")
		{
			err := validate.Check(newSubmission{Amount: -1})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tShould get field errors : %v", failed, err)
			}
			t.Logf("\t%s\tShould get field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if len(fields) != 2 {
				t.Fatalf("\t%s\tShould get two failing fields : %v", failed, fields)
			}
			t.Logf("\t%s\tShould get two failing fields.", success)

			for _, name := range []string{"target", "amount"} {
				if _, exists := fields[name]; !exists {
					t.Fatalf("\t%s\tShould report the json name %q : %v", failed, name, fields)
				}
			}
			t.Logf("\t%s\tShould report the json names.", success)
		}

		t.Logf("\tTest 2:\tWhen handling a plain error.")
		{
			if validate.IsFieldErrors(errors.New("boom")) {
				t.Fatalf("\t%s\tShould not treat it as field errors.", failed)
			}
			if validate.GetFieldErrors(errors.New("boom")) != nil {
				t.Fatalf("\t%s\tShould not return field errors.", failed)
			}
			t.Logf("\t%s\tShould not treat it as field errors.", success)
		}
	}
}
