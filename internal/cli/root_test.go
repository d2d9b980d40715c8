package cli

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"build", "graph", "cache", "serve", "explain", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestRootCommandConfigFlag(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	flag := root.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("root command missing --config flag")
	}
	if flag.DefValue != defaultConfigFile {
		t.Errorf("config flag default = %q, want %q", flag.DefValue, defaultConfigFile)
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)

	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("logger level = %v, want %v", c.Logger.GetLevel(), log.DebugLevel)
	}
}
