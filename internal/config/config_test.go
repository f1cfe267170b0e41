package config

import "testing"

func TestShouldMigrate(t *testing.T) {
	cases := []struct {
		name         string
		mode         string
		forceMigrate bool
		want         bool
	}{
		{"debug 默认迁移", "debug", false, true},
		{"release 默认不迁移", "release", false, false},
		{"release 显式 -migrate", "release", true, true},
		{"debug 显式 -migrate", "debug", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{ForceMigrate: tc.forceMigrate}
			cfg.Server.Mode = tc.mode
			if got := cfg.ShouldMigrate(); got != tc.want {
				t.Fatalf("ShouldMigrate() = %v, want %v", got, tc.want)
			}
		})
	}
}
