package utils

import (
	"testing"

	"talenthub-api/models"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"dev@example.com", "first.last+tag@sub.example.org"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "not-an-email", "missing@tld", "@example.com"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("short"); ok {
		t.Error("expected short password to fail")
	}
	if ok, msg := ValidatePassword("longenough"); !ok {
		t.Errorf("expected password to pass, got %q", msg)
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://github.com/acme/widget",
		"http://demo.example.org/preview",
		"  https://example.com/padded  ",
	}
	for _, raw := range valid {
		if !ValidateURL(raw) {
			t.Errorf("expected %q to be valid", raw)
		}
	}

	invalid := []string{
		"",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
		"just some text",
	}
	for _, raw := range invalid {
		if ValidateURL(raw) {
			t.Errorf("expected %q to be invalid", raw)
		}
	}
}

func TestValidateSubmissionLinks(t *testing.T) {
	err := ValidateSubmissionLinks(nil)
	if err == nil {
		t.Fatal("expected empty link list to fail")
	}
	wfErr, ok := AsWorkflowError(err)
	if !ok || wfErr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = ValidateSubmissionLinks([]models.SubmissionLink{
		{Type: "repository", Label: "", URL: "https://github.com/acme/widget"},
	})
	if err == nil {
		t.Fatal("expected missing label to fail")
	}

	err = ValidateSubmissionLinks([]models.SubmissionLink{
		{Type: "demo", Label: "Demo", URL: "not a url"},
	})
	if err == nil {
		t.Fatal("expected bad URL to fail")
	}

	err = ValidateSubmissionLinks([]models.SubmissionLink{
		{Type: "repository", Label: "Source", URL: "https://github.com/acme/widget"},
		{Type: "demo", Label: "Live demo", URL: "https://widget.example.org"},
	})
	if err != nil {
		t.Fatalf("expected links to pass, got %v", err)
	}
}

func TestValidateRating(t *testing.T) {
	for _, rating := range []int{1, 3, 5} {
		if err := ValidateRating(rating); err != nil {
			t.Errorf("expected rating %d to pass, got %v", rating, err)
		}
	}
	for _, rating := range []int{0, -1, 6} {
		if err := ValidateRating(rating); err == nil {
			t.Errorf("expected rating %d to fail", rating)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(50.0); err != nil {
		t.Fatalf("expected positive amount to pass, got %v", err)
	}
	for _, amount := range []float64{0, -10} {
		if err := ValidateAmount(amount); err == nil {
			t.Errorf("expected amount %.1f to fail", amount)
		}
	}
}

func TestWorkflowErrorUnwrap(t *testing.T) {
	inner := NotFoundError("Project")
	wrapped := WrapStoreError(inner)

	wfErr, ok := AsWorkflowError(wrapped)
	if !ok || wfErr.Kind != KindStore {
		t.Fatalf("expected store error at the surface, got %v", wrapped)
	}
	if wrapped.Unwrap() != inner {
		t.Fatal("expected Unwrap to expose the inner error")
	}
}
