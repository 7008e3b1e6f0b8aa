package participants

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var presenterNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleParticipant() Participant {
	id := uuid.New()
	return Participant{
		ID:                 id,
		NHSNumber:          "99900900829",
		EthnicBackgroundID: "irish",
		FirstName:          "Firstname",
		LastName:           "Lastname",
		Gender:             "Female",
		Email:              "Firstname.Lastname@example.com",
		Phone:              "07700 900000",
		DateOfBirth:        time.Date(1955, 1, 1, 0, 0, 0, 0, time.UTC),
		Address: &Address{
			ID:            uuid.New(),
			ParticipantID: id,
			Lines:         []string{"1", "2", "3"},
			Postcode:      "A123 ",
		},
	}
}

func TestPresentParticipant(t *testing.T) {
	p := sampleParticipant()
	got := PresentParticipant(p, presenterNow)

	assert.Nil(t, got.ExtraNeeds)
	assert.Equal(t, "Irish", got.EthnicBackground)
	assert.Equal(t, "White", got.EthnicCategory)
	assert.Equal(t, "Firstname Lastname", got.FullName)
	assert.Equal(t, "Female", got.Gender)
	assert.Equal(t, "Firstname.Lastname@example.com", got.Email)
	assert.Equal(t, &AddressView{Lines: []string{"1", "2", "3"}, Postcode: "A123 "}, got.Address)
	assert.Equal(t, "07700 900000", got.Phone)
	assert.Equal(t, "999 009 00829", got.NHSNumber)
	assert.Equal(t, "1 January 1955", got.DateOfBirth)
	assert.Equal(t, "70 years old", got.Age)
	assert.Equal(t, "", got.RiskLevel)
	assert.Equal(t, "/participants/"+p.ID.String()+"/", got.URL)
}

func TestPresentParticipant_AnyOtherBackground(t *testing.T) {
	tests := map[string]string{
		"any_other_white_background":                      "any other White background",
		"any_other_mixed_or_multiple_ethnic_background":   "any other mixed or multiple ethnic background",
		"any_other_asian_background":                      "any other Asian background",
		"any_other_black_african_or_caribbean_background": "any other Black, African or Caribbean background",
		"any_other_ethnic_background":                     "any other ethnic group",
	}
	for id, want := range tests {
		p := sampleParticipant()
		p.EthnicBackgroundID = id
		assert.Equal(t, want, PresentParticipant(p, presenterNow).EthnicBackground, id)
	}
}

func TestPresentParticipant_BackgroundDetails(t *testing.T) {
	p := sampleParticipant()
	p.EthnicBackgroundID = "any_other_white_background"
	p.EthnicBackgroundDetails = "Polish"

	assert.Equal(t, "any other White background (Polish)", PresentParticipant(p, presenterNow).EthnicBackground)
}

func TestPresentParticipant_NoAddressNoBackground(t *testing.T) {
	p := sampleParticipant()
	p.Address = nil
	p.EthnicBackgroundID = ""
	p.RiskLevel = "MODERATE"

	got := PresentParticipant(p, presenterNow)
	assert.Nil(t, got.Address)
	assert.Equal(t, "", got.EthnicBackground)
	assert.Equal(t, "", got.EthnicCategory)
	assert.Equal(t, "Moderate", got.RiskLevel)
}

func TestEthnicityURL(t *testing.T) {
	p := sampleParticipant()
	pp := PresentParticipant(p, presenterNow)
	base := "/participants/" + p.ID.String() + "/edit-ethnicity"

	assert.Equal(t, base, pp.EthnicityURL(""))
	assert.Equal(t, base+"?return_url=/return/path/", pp.EthnicityURL("/return/path/"))
}
