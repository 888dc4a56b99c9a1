package termcmd

import "testing"

func TestValidateHeadlessRequiresServer(t *testing.T) {
	err := validate(runOptions{headless: true, token: "tok"})
	if err == nil {
		t.Fatal("expected an error when --headless is set without --server")
	}
}

func TestValidateHeadlessRequiresToken(t *testing.T) {
	err := validate(runOptions{headless: true, server: "localhost:6379"})
	if err == nil {
		t.Fatal("expected an error when --headless is set without --token")
	}
}

func TestValidateHeadlessWithBothSucceeds(t *testing.T) {
	err := validate(runOptions{headless: true, server: "localhost:6379", token: "tok"})
	if err != nil {
		t.Errorf("validate() = %v, want nil", err)
	}
}

func TestValidateNonHeadlessNeedsNothing(t *testing.T) {
	if err := validate(runOptions{}); err != nil {
		t.Errorf("validate() = %v, want nil for non-headless", err)
	}
}
