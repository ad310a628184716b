package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Çocuk Odası":             "cocuk-odasi",
		"İpek Dokulu Duvar Kağıdı": "ipek-dokulu-duvar-kagidi",
		"  Şık & Modern  ":        "sik-modern",
		"3D Görünümlü Tuğla":      "3d-gorunumlu-tugla",
		"Café Crème":              "cafe-creme",
		"IŞIK":                    "isik",
		"---":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Make(in), in)
	}
}
