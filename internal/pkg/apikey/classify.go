package apikey

import (
	"strings"

	"github.com/ManuelReschke/merchantgate/app/models"
)

// Kind tells a publishable key from a secret one.
type Kind string

const (
	KindPublic Kind = "public"
	KindSecret Kind = "secret"
)

// Classification is what a credential's prefix alone reveals about it.
type Classification struct {
	Kind    Kind
	KeyType models.KeyType
}

// Classify inspects the prefix of token. ok is false for anything that does not
// look like a key issued by Generate.
func Classify(token string) (Classification, bool) {
	var kind Kind
	var rest string
	switch {
	case strings.HasPrefix(token, publicMarker):
		kind, rest = KindPublic, token[len(publicMarker):]
	case strings.HasPrefix(token, secretMarker):
		kind, rest = KindSecret, token[len(secretMarker):]
	default:
		return Classification{}, false
	}

	for _, kt := range []models.KeyType{models.KeyTypeTest, models.KeyTypeLive} {
		marker := string(kt) + "_"
		if strings.HasPrefix(rest, marker) && len(rest) > len(marker) {
			return Classification{Kind: kind, KeyType: kt}, true
		}
	}
	return Classification{}, false
}
