package validation

import (
	"fmt"
	"testing"
)

type reviewInput struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type listingInput struct {
	Title string  `json:"title" validate:"required"`
	Price float64 `json:"price" validate:"gt=0"`
	Email string  `json:"email" validate:"omitempty,email"`
	Role  string  `json:"role" validate:"oneof=customer agent"`
}

func TestStruct_Rating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		v := Struct(reviewInput{Rating: rating})
		if v["rating"] != "out_of_range" {
			t.Errorf("rating %d: expected out_of_range, got %v", rating, v)
		}
	}
	for _, rating := range []int{1, 3, 5} {
		if v := Struct(reviewInput{Rating: rating}); !v.Empty() {
			t.Errorf("rating %d: unexpected %v", rating, v)
		}
	}
}

func TestStruct_Codes(t *testing.T) {
	v := Struct(listingInput{Email: "nope", Role: "admin"})
	want := Violations{
		"title": "required",
		"price": "must_be_positive",
		"email": "invalid_email",
		"role":  "invalid_choice",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: got %q, want %q", field, v[field], code)
		}
	}
}

func TestViolations_AsError(t *testing.T) {
	if (Violations{}).Err() != nil {
		t.Fatal("empty violations should be nil error")
	}
	err := fmt.Errorf("submit: %w", Violations{"rating": "out_of_range"}.Err())
	v, ok := AsViolations(err)
	if !ok || v["rating"] != "out_of_range" {
		t.Fatalf("expected wrapped violations, got %v %v", v, ok)
	}
}

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("title", "  ", v)
	PositiveFloat("price", 0, v)
	RangeFloat("rating", 7, 1, 5, v)
	if len(v) != 3 {
		t.Fatalf("expected 3 violations, got %v", v)
	}
}
