package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegalBasis(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore int
		wantFound bool
		wantIssue string
	}{
		{"none", "We sell shoes.", 0, false, "No clear legal basis for data processing specified"},
		{"one basis", "We ask for your consent.", 50, true, "Limited legal bases mentioned"},
		{"two bases", "We rely on your consent and on our contract with you.", 75, true, ""},
		{"three bases", "Consent, contract and our legitimate interests apply.", 100, true, ""},
		{"citation alone", "See Article 6 of the regulation.", 10, false, "No clear legal basis for data processing specified"},
		{"citation capped", "Consent, contract, legitimate interest and GDPR Art. 6.", 100, true, ""},
	}

	a := NewAnalyzer(nil)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := a.LegalBasis(tc.text)

			assert.Equal(t, tc.wantScore, s.Score)
			assert.Equal(t, tc.wantFound, s.Found)

			if tc.wantIssue == "" {
				assert.Empty(t, s.Issues)
			} else {
				assert.Equal(t, []string{tc.wantIssue}, s.Issues)
			}
		})
	}
}

func TestLegalBasis_Details(t *testing.T) {
	s := NewAnalyzer(nil).LegalBasis("Processing relies on a legal obligation and our legitimate interest.")

	assert.Equal(t, []string{
		"Mentions legal obligation as legal basis",
		"Mentions legitimate interest as legal basis",
	}, s.Details)
}

func TestDataRetention(t *testing.T) {
	a := NewAnalyzer(nil)

	t.Run("no retention language", func(t *testing.T) {
		s := a.DataRetention("We value your privacy and only use information to run the service.")

		assert.Equal(t, 0, s.Score)
		assert.Equal(t, StatusMissing, s.Status)
		assert.False(t, s.Found)
		assert.Equal(t, []string{"No clear data retention policy found", "No specific retention periods mentioned"}, s.Issues)
	})

	t.Run("policy without period", func(t *testing.T) {
		s := a.DataRetention("Our retention policy is reviewed yearly.")

		assert.Equal(t, 40, s.Score)
		assert.Equal(t, StatusPartial, s.Status)
		assert.True(t, s.Found)
	})

	t.Run("period in words", func(t *testing.T) {
		s := a.DataRetention("Account data will be retained for two years.")

		assert.Equal(t, 80, s.Score)
		assert.Contains(t, s.Details, "Specifies retention periods (two years)")
	})
}

func TestUserRights(t *testing.T) {
	a := NewAnalyzer(nil)

	t.Run("few missing are listed", func(t *testing.T) {
		s := a.UserRights("You have the right to access, rectification, erasure, data portability and the right to object.")

		assert.Equal(t, 80, s.Score)
		assert.True(t, s.Found)
		assert.Equal(t, []string{"Covers 5/7 user rights: Access, Rectification, Erasure, Portability, Objection"}, s.Details)
		assert.Equal(t, []string{"Missing rights: Restriction, Automated Decision"}, s.Issues)
	})

	t.Run("many missing are summarized", func(t *testing.T) {
		s := a.UserRights("You may request a copy of your records.")

		assert.Equal(t, 15, s.Score)
		assert.False(t, s.Found)
		assert.Equal(t, []string{"Significant user rights not mentioned"}, s.Issues)
	})

	t.Run("none", func(t *testing.T) {
		s := a.UserRights("Nothing relevant.")

		assert.Equal(t, 0, s.Score)
		assert.Empty(t, s.Details)
	})
}

func TestThirdPartySharing(t *testing.T) {
	a := NewAnalyzer(nil)

	assert.Equal(t, 0, a.ThirdPartySharing("Nothing relevant.").Score)
	assert.Equal(t, 40, a.ThirdPartySharing("We work with partners.").Score)
	assert.Equal(t, 100, a.ThirdPartySharing("We share data with Stripe in order to process payments.").Score)
}

func TestInternationalTransfers(t *testing.T) {
	a := NewAnalyzer(nil)

	none := a.InternationalTransfers("We host everything locally.")
	assert.Equal(t, 50, none.Score)
	assert.Equal(t, StatusPartial, none.Status)
	assert.False(t, none.Found)
	assert.Equal(t, []string{"No international transfers mentioned"}, none.Details)

	unsafe := a.InternationalTransfers("Data is processed in the United States.")
	assert.Equal(t, 30, unsafe.Score)
	assert.Equal(t, StatusMissing, unsafe.Status)
	assert.Equal(t, []string{"International transfers without documented safeguards (SCCs, adequacy decision)"}, unsafe.Issues)

	safe := a.InternationalTransfers("Cross-border transfers rely on SCCs or an adequacy decision.")
	assert.Equal(t, 100, safe.Score)
	assert.Contains(t, safe.Details, "Uses legal safeguards (SCCs, adequacy decision)")
}

func TestContactInfo(t *testing.T) {
	a := NewAnalyzer(nil)

	assert.Equal(t, 30, a.ContactInfo("Write to our DPO.").Score)
	assert.Equal(t, 0, a.ContactInfo("write to our dpo.").Score)

	s := a.ContactInfo("Email dpo@example.eu or contact the CNIL.")
	assert.Equal(t, 50, s.Score)
	assert.True(t, s.Found)
	assert.Equal(t, []string{"No Data Protection Officer contact"}, s.Issues)
}

func TestCookiePolicy(t *testing.T) {
	a := NewAnalyzer(nil)

	assert.Equal(t, 0, a.CookiePolicy("Nothing relevant.").Score)
	assert.Equal(t, 70, a.CookiePolicy("Read about our use of cookies and necessary cookies.").Score)
	assert.Equal(t, 100, a.CookiePolicy("Cookie notice: we set functional cookies, change your browser settings to opt out.").Score)
}

func TestChildrenPrivacy(t *testing.T) {
	a := NewAnalyzer(nil)

	t.Run("not directed at children", func(t *testing.T) {
		s := a.ChildrenPrivacy("this service is not directed at children under 13")

		assert.Equal(t, 100, s.Score)
		assert.Equal(t, StatusCompliant, s.Status)
		assert.True(t, s.Found)
	})

	t.Run("section only", func(t *testing.T) {
		s := a.ChildrenPrivacy("Parental consent is required for minors.")

		assert.Equal(t, 80, s.Score)
		assert.Equal(t, []string{"Contains children privacy policy"}, s.Details)
	})

	t.Run("silent", func(t *testing.T) {
		s := a.ChildrenPrivacy("Nothing relevant.")

		assert.Equal(t, 50, s.Score)
		assert.False(t, s.Found)
		assert.Equal(t, []string{"No statement about children's data"}, s.Issues)
	})
}

func TestSections_IndependentOfUnrelatedText(t *testing.T) {
	a := NewAnalyzer(nil)

	core := "We retain your data for 12 months."
	variants := []string{
		core,
		"Welcome to our shop. " + core,
		core + " Shipping is free on orders above fifty euros.",
		"Opening hours vary. " + core + " Enjoy browsing.",
	}

	for _, v := range variants {
		assert.Equal(t, 80, a.DataRetention(v).Score, v)
		assert.Equal(t, 50, a.ChildrenPrivacy(v).Score, v)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusCompliant, statusFor(70))
	assert.Equal(t, StatusPartial, statusFor(69))
	assert.Equal(t, StatusPartial, statusFor(40))
	assert.Equal(t, StatusMissing, statusFor(39))
}
