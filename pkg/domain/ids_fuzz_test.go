package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseDecisionID checks parsing never panics and accepted ids round-trip.
func FuzzParseDecisionID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE access_decisions;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseDecisionID(input)
		if err == nil {
			roundTrip, err2 := ParseDecisionID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types accept and reject the same inputs.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errApp := ParseApplicationID(input)
		_, errCampaign := ParseCampaignID(input)
		_, errDecision := ParseDecisionID(input)

		accepted := errUser == nil
		if (errApp == nil) != accepted || (errCampaign == nil) != accepted || (errDecision == nil) != accepted {
			t.Error("inconsistent parsing across ID types")
		}
	})
}
