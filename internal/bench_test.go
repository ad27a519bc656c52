package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkLoadInstalledNames(b *testing.B) {
	dir := b.TempDir()
	fp := filepath.Join(dir, "names.txt")
	var body string
	for i := 0; i < 2000; i++ {
		body += fmt.Sprintf("Program %04d Suite\n", i)
	}
	_ = os.WriteFile(fp, []byte(body), 0644)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadInstalledNames(fp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatchInstalled(b *testing.B) {
	names := make(map[string]struct{}, 501)
	for i := 0; i < 500; i++ {
		names[fmt.Sprintf("vendor%03d product", i)] = struct{}{}
	}
	names["adobe photoshop"] = struct{}{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := MatchInstalled("Photoshop_Setup_2024", names); !ok {
			b.Fatal("expected a match")
		}
	}
}
