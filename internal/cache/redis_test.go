package cache

import (
	"testing"

	"github.com/haalarikone/haku-api/internal/models"
)

func TestInterpretationKey_Deterministic(t *testing.T) {
	k1 := interpretationKey(models.LocaleFI, "vihreä")
	k2 := interpretationKey(models.LocaleFI, "vihreä")
	if k1 != k2 {
		t.Errorf("key not deterministic: %q != %q", k1, k2)
	}
}

func TestInterpretationKey_NormalizesCaseAndSpace(t *testing.T) {
	base := interpretationKey(models.LocaleFI, "vihreä")

	for _, variant := range []string{"VIHREÄ", "  vihreä  ", "Vihreä"} {
		if got := interpretationKey(models.LocaleFI, variant); got != base {
			t.Errorf("interpretationKey(%q) = %q, want %q", variant, got, base)
		}
	}
}

func TestInterpretationKey_LocaleScoped(t *testing.T) {
	fi := interpretationKey(models.LocaleFI, "green")
	en := interpretationKey(models.LocaleEN, "green")
	if fi == en {
		t.Error("keys must differ across locales")
	}
}

func TestInterpretationKey_DifferentQueries(t *testing.T) {
	if interpretationKey(models.LocaleFI, "vihreä") == interpretationKey(models.LocaleFI, "punainen") {
		t.Error("different queries should produce different keys")
	}
}
