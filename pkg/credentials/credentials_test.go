package credentials_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir  string
		keyFile string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		keyFile = filepath.Join(tmpDir, "sa.json")
		Expect(os.WriteFile(keyFile, []byte(`{"type":"service_account"}`), 0o600)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("creates a manager with an override directory", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds).NotTo(BeNil())
			Expect(creds.Services).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := `version = 0

[services.vertex]
credentials_file = "/etc/leadline/sa.json"
`
			err := os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Services).To(HaveKey("vertex"))
			Expect(creds.Services["vertex"].CredentialsFile).To(Equal("/etc/leadline/sa.json"))
		})

		It("returns an error for invalid TOML", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte("not valid [[["), 0o600)
			Expect(err).NotTo(HaveOccurred())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("parsing credentials")))
		})
	})

	Describe("SetCredentialsFile", func() {
		It("stores the key path with 0600 permissions", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetCredentialsFile(credentials.ServiceSearch, keyFile)).To(Succeed())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			file, err := mgr.CredentialsFile(credentials.ServiceSearch)
			Expect(err).NotTo(HaveOccurred())
			Expect(file).To(Equal(keyFile))
		})

		It("rejects a missing key file", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			err = mgr.SetCredentialsFile(credentials.ServiceVertex, filepath.Join(tmpDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("checking credentials file")))
		})

		It("overwrites an existing entry", func() {
			other := filepath.Join(tmpDir, "other.json")
			Expect(os.WriteFile(other, []byte(`{}`), 0o600)).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetCredentialsFile(credentials.ServiceVertex, keyFile)).To(Succeed())
			Expect(mgr.SetCredentialsFile(credentials.ServiceVertex, other)).To(Succeed())

			file, err := mgr.CredentialsFile(credentials.ServiceVertex)
			Expect(err).NotTo(HaveOccurred())
			Expect(file).To(Equal(other))
		})
	})

	Describe("CredentialsFile", func() {
		It("returns empty for services on default credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			file, err := mgr.CredentialsFile(credentials.ServiceClient)
			Expect(err).NotTo(HaveOccurred())
			Expect(file).To(BeEmpty())
		})
	})

	Describe("Remove", func() {
		It("removes a stored service", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetCredentialsFile(credentials.ServiceVertex, keyFile)).To(Succeed())
			Expect(mgr.SetCredentialsFile(credentials.ServiceSearch, keyFile)).To(Succeed())
			Expect(mgr.Remove(credentials.ServiceVertex)).To(Succeed())

			services, err := mgr.ListServices()
			Expect(err).NotTo(HaveOccurred())
			Expect(services).To(Equal([]string{"search"}))
		})

		It("is a no-op for unknown services", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.Remove("nonexistent")).To(Succeed())
		})
	})

	Describe("ListServices", func() {
		It("returns sorted service names", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetCredentialsFile(credentials.ServiceVertex, keyFile)).To(Succeed())
			Expect(mgr.SetCredentialsFile(credentials.ServiceClient, keyFile)).To(Succeed())

			services, err := mgr.ListServices()
			Expect(err).NotTo(HaveOccurred())
			Expect(services).To(Equal([]string{"client", "vertex"}))
		})
	})

	Describe("AccessTokenSource", func() {
		It("fails on an unreadable key file", func() {
			_, err := credentials.AccessTokenSource(context.Background(), filepath.Join(tmpDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("reading credentials file")))
		})

		It("fails on a malformed key file", func() {
			bad := filepath.Join(tmpDir, "bad.json")
			Expect(os.WriteFile(bad, []byte("not json"), 0o600)).To(Succeed())

			_, err := credentials.AccessTokenSource(context.Background(), bad)
			Expect(err).To(MatchError(ContainSubstring("parsing credentials file")))
		})
	})
})

var _ = Describe("SupportedServices", func() {
	It("lists every service", func() {
		Expect(credentials.SupportedServices()).To(Equal([]string{"vertex", "search", "client"}))
	})

	DescribeTable("IsSupportedService",
		func(service string, expected bool) {
			Expect(credentials.IsSupportedService(service)).To(Equal(expected))
		},
		Entry("vertex", "vertex", true),
		Entry("search", "search", true),
		Entry("client", "client", true),
		Entry("openai", "openai", false),
		Entry("empty", "", false),
	)
})
