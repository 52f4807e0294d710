// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

//go:build integration

package cli_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/painlog/painlog/internal/auth"
)

var _ = Describe("Auth commands", func() {
	var (
		ctx context.Context
		c   *cli
	)

	BeforeEach(func() {
		ctx = context.Background()
		cleanupDatabase(ctx)
		c = newCLI()
	})

	It("reports an up-to-date schema", func() {
		output, err := c.run(ctx, "migrate", "up")
		Expect(err).NotTo(HaveOccurred(), output)
		Expect(output).To(ContainSubstring("Schema is up to date"))

		output, err = c.run(ctx, "migrate", "status")
		Expect(err).NotTo(HaveOccurred(), output)
		Expect(output).To(ContainSubstring("Pending: 0"))
	})

	It("registers, signs in and signs out", func() {
		output, err := c.run(ctx, "register", "--email", "Rin@Example.com", "--password", "secret1")
		Expect(err).NotTo(HaveOccurred(), output)
		Expect(output).To(ContainSubstring("Registered rin@example.com"))

		var profiles int
		Expect(db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM user_profiles").Scan(&profiles)).To(Succeed())
		Expect(profiles).To(Equal(1))

		output, err = c.run(ctx, "session", "--json")
		Expect(err).NotTo(HaveOccurred(), output)
		var state auth.SessionState
		Expect(json.Unmarshal([]byte(output), &state)).To(Succeed())
		Expect(state.User).NotTo(BeNil())
		Expect(state.User.Email).To(Equal("rin@example.com"))

		output, err = c.run(ctx, "logout")
		Expect(err).NotTo(HaveOccurred(), output)

		output, err = c.run(ctx, "session")
		Expect(err).NotTo(HaveOccurred(), output)
		Expect(output).To(ContainSubstring("Not signed in"))

		output, err = c.run(ctx, "login", "--email", "rin@example.com", "--password", "secret1")
		Expect(err).NotTo(HaveOccurred(), output)
		Expect(output).To(ContainSubstring("Signed in as rin@example.com"))
	})

	It("rejects a wrong password with a user-facing message", func() {
		output, err := c.run(ctx, "register", "--email", "rin@example.com", "--password", "secret1")
		Expect(err).NotTo(HaveOccurred(), output)

		output, err = c.run(ctx, "login", "--email", "rin@example.com", "--password", "secret2")
		Expect(err).To(HaveOccurred())
		Expect(output).To(ContainSubstring("The email address or password is incorrect."))
	})

	It("rejects a second registration of the same address", func() {
		output, err := c.run(ctx, "register", "--email", "rin@example.com", "--password", "secret1")
		Expect(err).NotTo(HaveOccurred(), output)

		output, err = c.run(ctx, "register", "--json", "--email", "RIN@example.com", "--password", "secret1")
		Expect(err).To(HaveOccurred())
		Expect(output).To(ContainSubstring(`"kind":"EMAIL_ALREADY_IN_USE"`))
	})
})
