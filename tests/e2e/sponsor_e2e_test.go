//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSponsorCRUD(t *testing.T) {
	resetState(t)
	client := NewTestClient(t, instanceA)
	loginAdmin(t, client)

	sponsors, err := client.ListSponsors()
	assertNoError(t, err, "initial list")
	assertEqual(t, len(sponsors), 0, "list starts empty")

	first := testSponsor("acme")
	second := testSponsor("globex")
	assertNoError(t, client.AddSponsor(first), "add first sponsor")
	assertNoError(t, client.AddSponsor(second), "add second sponsor")

	sponsors, err = client.ListSponsors()
	assertNoError(t, err, "list after adds")
	assertEqual(t, len(sponsors), 2, "two sponsors stored")
	assertEqual(t, sponsors[0], first, "first sponsor in order")
	assertEqual(t, sponsors[1], second, "second sponsor in order")

	assertNoError(t, client.DeleteSponsor(0), "delete first sponsor")

	sponsors, err = client.ListSponsors()
	assertNoError(t, err, "list after delete")
	assertEqual(t, len(sponsors), 1, "one sponsor left")
	assertEqual(t, sponsors[0], second, "remaining records shift down")
}

func TestSponsorEditFlow(t *testing.T) {
	resetState(t)
	client := NewTestClient(t, instanceA)
	loginAdmin(t, client)

	assertNoError(t, client.AddSponsor(testSponsor("before")), "seed sponsor")

	// Enter edit mode on the seeded record
	resp, err := client.PostJSON("/api/v1/sponsors/0/edit", nil)
	assertNoError(t, err, "begin edit")
	assertEqual(t, resp.StatusCode, http.StatusOK, "begin edit status")

	var state struct {
		Editing bool `json:"editing"`
		Index   *int `json:"index"`
	}
	assertNoError(t, json.NewDecoder(resp.Body).Decode(&state), "decode edit state")
	resp.Body.Close()
	assertEqual(t, state.Editing, true, "edit mode active")
	assertEqual(t, *state.Index, 0, "editing the seeded record")

	// Submitting now replaces instead of appending
	replacement := testSponsor("after")
	resp, err = client.PostJSON("/api/v1/sponsors", replacement)
	assertNoError(t, err, "submit replacement")
	assertEqual(t, resp.StatusCode, http.StatusOK, "replacement status")
	resp.Body.Close()

	sponsors, err := client.ListSponsors()
	assertNoError(t, err, "list after edit")
	assertEqual(t, len(sponsors), 1, "edit must not grow the list")
	assertEqual(t, sponsors[0], replacement, "record replaced in place")
}

func TestSponsorValidation(t *testing.T) {
	resetState(t)
	client := NewTestClient(t, instanceA)
	loginAdmin(t, client)

	resp, err := client.PostJSON("/api/v1/sponsors", map[string]string{
		"name": "", "logo": "l", "link": "k",
	})
	assertNoError(t, err, "submit empty name")
	defer resp.Body.Close()
	assertEqual(t, resp.StatusCode, http.StatusBadRequest, "empty field rejected")

	sponsors, err := client.ListSponsors()
	assertNoError(t, err, "list after rejection")
	assertEqual(t, len(sponsors), 0, "rejected submit must not persist")
}
