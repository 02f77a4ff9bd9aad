package classifier

import (
	"reflect"
	"testing"

	"github.com/IshaanNene/sporhaber/internal/config"
)

func TestIsSportsRelated(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		title   string
		content string
		want    bool
	}{
		{"title override beats negatives", "Spor haberleri", "siyaset ekonomi", true},
		{"title override without positives", "Spor dünyasından", "bugün hava güzel", true},
		{"title override uppercase", "SPOR GÜNDEMİ", "", true},
		{"only negatives", "Ekonomi Haberi", "borsa dolar enflasyon", false},
		{"nothing matches", "Hava durumu", "yarın yağmur bekleniyor", false},
		{"positive only", "Derbi nefes kesti", "Galatasaray sahasında kazandı", true},
		{"positive and negative", "Meclis toplandı", "milletvekili maç sonucu hakkında konuştu", false},
		{"suppressor futbol", "Bakan ziyaret etti", "cumhurbaşkanı futbol maçını izledi", true},
		{"suppressor basketbol", "Konser iptal", "basketbol salonundaki konser ertelendi, maç oynanacak", true},
		{"suppressor needs a positive", "Meclis gündemi", "spor", false},
		{"dotted capital I", "İSTANBUL DERBİSİ", "", true},
		{"acronym uppercase", "FIFA açıkladı", "yeni kurallar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsSportsRelated(tt.title, tt.content); got != tt.want {
				t.Errorf("IsSportsRelated(%q, %q) = %v, want %v", tt.title, tt.content, got, tt.want)
			}
		})
	}
}

func TestTags(t *testing.T) {
	c := New()

	got := c.Tags("Fenerbahçe derbi öncesi", "Teknik direktör futbol maç planını açıkladı")
	want := []string{"futbol", "teknik direktör", "maç", "derbi", "fenerbahçe"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestTagsDefault(t *testing.T) {
	c := New()

	got := c.Tags("Spor dünyası", "bugün sakin bir gün")
	if !reflect.DeepEqual(got, []string{"spor"}) {
		t.Errorf("expected default tag, got %v", got)
	}
}

func TestTagsNotAcrossBoundary(t *testing.T) {
	c := New()

	// "milli" ends the title and "takım" starts the content; the joined
	// phrase is not reported.
	got := c.Tags("Gençler milli", "takım kampa girdi")
	for _, tag := range got {
		if tag == "milli takım" {
			t.Error("tag matched across title/content boundary")
		}
	}
}

func TestFromConfig(t *testing.T) {
	c := FromConfig(config.ClassifierConfig{
		ExtraPositive: []string{"Kriket", "futbol", "  "},
		ExtraNegative: []string{"hava durumu"},
	})

	if !c.IsSportsRelated("Kriket turu", "") {
		t.Error("extra positive keyword not applied")
	}
	if c.IsSportsRelated("Hava durumu", "derbi günü hava durumu yağmurlu") {
		t.Error("extra negative keyword not applied")
	}

	count := 0
	for _, k := range c.positive {
		if k == "futbol" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate keyword appended %d times", count)
	}
	if last := c.positive[len(c.positive)-1]; last != "kriket" {
		t.Errorf("extra keywords should follow built-ins, last is %q", last)
	}
}

func BenchmarkIsSportsRelated(b *testing.B) {
	c := New()
	content := "Süper Lig'in 12. haftasında oynanan maçta ev sahibi ekip son dakikada attığı golle kazandı."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.IsSportsRelated("Son dakika golü", content)
	}
}
