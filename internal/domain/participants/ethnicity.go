package participants

import "strings"

const PreferNotToSay = "prefer_not_to_say"

// EthnicBackground is one option of the England equality-information list.
// NonSpecific backgrounds ("Any other ...") accept free-text details.
type EthnicBackground struct {
	ID          string
	DisplayName string
	Category    string
	NonSpecific bool
}

const (
	CategoryWhite = "White"
	CategoryMixed = "Mixed or multiple ethnic groups"
	CategoryAsian = "Asian or Asian British"
	CategoryBlack = "Black, African, Caribbean or Black British"
	CategoryOther = "Other ethnic group"
)

// EthnicBackgrounds lists every option in display order.
var EthnicBackgrounds = []EthnicBackground{
	{ID: "english_welsh_scottish_ni_british", DisplayName: "English, Welsh, Scottish, Northern Irish or British", Category: CategoryWhite},
	{ID: "irish", DisplayName: "Irish", Category: CategoryWhite},
	{ID: "gypsy_or_irish_traveller", DisplayName: "Gypsy or Irish Traveller", Category: CategoryWhite},
	{ID: "any_other_white_background", DisplayName: "Any other White background", Category: CategoryWhite, NonSpecific: true},

	{ID: "white_and_black_caribbean", DisplayName: "White and Black Caribbean", Category: CategoryMixed},
	{ID: "white_and_black_african", DisplayName: "White and Black African", Category: CategoryMixed},
	{ID: "white_and_asian", DisplayName: "White and Asian", Category: CategoryMixed},
	{ID: "any_other_mixed_or_multiple_ethnic_background", DisplayName: "Any other mixed or multiple ethnic background", Category: CategoryMixed, NonSpecific: true},

	{ID: "indian", DisplayName: "Indian", Category: CategoryAsian},
	{ID: "pakistani", DisplayName: "Pakistani", Category: CategoryAsian},
	{ID: "bangladeshi", DisplayName: "Bangladeshi", Category: CategoryAsian},
	{ID: "chinese", DisplayName: "Chinese", Category: CategoryAsian},
	{ID: "any_other_asian_background", DisplayName: "Any other Asian background", Category: CategoryAsian, NonSpecific: true},

	{ID: "african", DisplayName: "African", Category: CategoryBlack},
	{ID: "caribbean", DisplayName: "Caribbean", Category: CategoryBlack},
	{ID: "any_other_black_african_or_caribbean_background", DisplayName: "Any other Black, African or Caribbean background", Category: CategoryBlack, NonSpecific: true},

	{ID: "arab", DisplayName: "Arab", Category: CategoryOther},
	{ID: "any_other_ethnic_background", DisplayName: "Any other ethnic group", Category: CategoryOther, NonSpecific: true},

	{ID: PreferNotToSay, DisplayName: "Prefer not to say"},
}

var backgroundsByID = func() map[string]EthnicBackground {
	m := make(map[string]EthnicBackground, len(EthnicBackgrounds))
	for _, b := range EthnicBackgrounds {
		m[b.ID] = b
	}
	return m
}()

func LookupEthnicBackground(id string) (EthnicBackground, bool) {
	b, ok := backgroundsByID[strings.TrimSpace(id)]
	return b, ok
}

// EthnicBackgroundsByCategory groups the options for the edit form.
// Prefer-not-to-say has no category and is left out.
func EthnicBackgroundsByCategory() map[string][]EthnicBackground {
	out := make(map[string][]EthnicBackground)
	for _, b := range EthnicBackgrounds {
		if b.Category == "" {
			continue
		}
		out[b.Category] = append(out[b.Category], b)
	}
	return out
}
