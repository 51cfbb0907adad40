package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	femaleEnglish := Voice{Name: "Microsoft Zira Female", Lang: "en-US"}
	maleEnglish := Voice{Name: "Daniel", Lang: "en_GB"}
	french := Voice{Name: "Amelie", Lang: "fr-FR"}

	testcases := []struct {
		name   string
		voices []Voice
		want   Voice
		wantOK bool
	}{
		{
			name:   "female-english-preferred",
			voices: []Voice{french, maleEnglish, femaleEnglish},
			want:   femaleEnglish,
			wantOK: true,
		},
		{
			name:   "any-english-when-no-female",
			voices: []Voice{french, maleEnglish},
			want:   maleEnglish,
			wantOK: true,
		},
		{
			name:   "first-when-no-english",
			voices: []Voice{french, {Name: "Anna", Lang: "de-DE"}},
			want:   french,
			wantOK: true,
		},
		{
			name:   "empty-list",
			voices: nil,
			wantOK: false,
		},
		{
			name:   "case-insensitive-substring",
			voices: []Voice{{Name: "ZIRA FEMALE edition", Lang: "EN-us"}},
			want:   Voice{Name: "ZIRA FEMALE edition", Lang: "EN-us"},
			wantOK: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Select(tc.voices)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseSayVoices(t *testing.T) {
	out := []byte(`Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel.
Amelie              fr-CA    # Bonjour, je m'appelle Amelie.
garbage line without a language tag
`)
	voices := parseSayVoices(out)

	assert.Len(t, voices, 3)
	assert.Equal(t, Voice{Name: "Alex", Lang: "en_US"}, voices[0])
	assert.Equal(t, Voice{Name: "Bad News", Lang: "en_US"}, voices[1])
	assert.Equal(t, Voice{Name: "Amelie", Lang: "fr-CA"}, voices[2])
}

func TestParseEspeakVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af             --/M      Afrikaans          gmw/af
 5  en-gb          --/F      English_(Great_Britain) gmw/en
 5  fr-fr          --/M      French_(France)    roa/fr
`)
	voices := parseEspeakVoices(out)

	assert.Len(t, voices, 3)
	assert.Equal(t, "af", voices[0].Lang)
	// Gender folds into the name so the female preference can match.
	assert.Contains(t, voices[1].Name, "(female)")
	assert.Equal(t, "en-gb", voices[1].Lang)

	selected, ok := Select(voices)
	assert.True(t, ok)
	assert.Equal(t, "en-gb", selected.Lang)
}
