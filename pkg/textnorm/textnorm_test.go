package textnorm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/textnorm"
)

var _ = Describe("ToPlainText", func() {
	It("strips inline formatting", func() {
		text, err := textnorm.ToPlainText("Our **Nails** program is _600 hours_.")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Our Nails program is 600 hours."))
	})

	It("keeps line breaks between blocks", func() {
		text, err := textnorm.ToPlainText("## Upcoming starts\n\nMorning classes begin soon.\n\nWould you like details?")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Upcoming starts\nMorning classes begin soon.\nWould you like details?"))
	})

	It("renders list items on their own lines", func() {
		text, err := textnorm.ToPlainText("Options:\n\n* Full time\n* Part time")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Options:\n- Full time\n- Part time"))
	})

	It("keeps link text", func() {
		text, err := textnorm.ToPlainText("Visit [our site](https://example.com) today")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Visit our site today"))
	})

	It("replaces non-breaking spaces", func() {
		text, err := textnorm.ToPlainText("Esthetics\u00a0program")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Esthetics program"))
	})

	It("returns empty text for blank input", func() {
		text, err := textnorm.ToPlainText("  \n ")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
		Expect(textnorm.PlainTextOrRaw("")).To(BeEmpty())
	})
})

var _ = Describe("PlainTextOrRaw", func() {
	It("renders markdown like ToPlainText", func() {
		Expect(textnorm.PlainTextOrRaw("Our **Nails** program is _600 hours_.")).To(Equal("Our Nails program is 600 hours."))
	})
})
