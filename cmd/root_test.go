package cmd

import "testing"

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "checkatron" {
		t.Errorf("Expected Use to be 'checkatron', got '%s'", RootCmd.Use)
	}
	if RootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	want := map[string]bool{"generate": false, "batch": false, "run": false, "version": false}
	for _, sub := range RootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}

	if RootCmd.PersistentFlags().Lookup("debug") == nil {
		t.Error("expected --debug flag to be defined")
	}
}
