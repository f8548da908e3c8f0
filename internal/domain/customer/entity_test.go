// internal/domain/customer/entity_test.go
package customer

import "testing"

func TestEmailDomainAllowed(t *testing.T) {
	allowed := []string{
		"a@gmail.com",
		"b@yahoo.com",
		"C@Outlook.com",
		" d@hotmail.com ",
		"e@icloud.com",
		"f@proton.me",
	}
	for _, e := range allowed {
		if !EmailDomainAllowed(e) {
			t.Errorf("EmailDomainAllowed(%q) = false, want true", e)
		}
	}

	blocked := []string{
		"user@corp.example",
		"user@gmail.com.evil.example",
		"user@protonmail.com",
		"no-at-sign",
		"@gmail.com",
		"user@",
		"",
	}
	for _, e := range blocked {
		if EmailDomainAllowed(e) {
			t.Errorf("EmailDomainAllowed(%q) = true, want false", e)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		" +1 555-000-1111 ": "+15550001111",
		"+81 90 1234 5678":  "+819012345678",
		"5550001111":        "5550001111",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
