// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

//go:build integration

package cli_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/vernuntii/vernuntii/pkg/errutil"
)

var _ = Describe("Next version", func() {
	var env *repoEnv

	BeforeEach(func() {
		env = newRepoEnv()
	})

	Context("without tags", func() {
		It("starts at the default start version", func() {
			env.commit("chore: init")

			Expect(env.run()).To(Equal(errutil.ExitSuccess))
			Expect(env.stdout.String()).To(Equal("0.1.0-alpha.1\n"))
		})
	})

	Context("after a release tag", func() {
		BeforeEach(func() {
			env.commit("feat: first")
			env.git("tag", "v1.0.0")
		})

		It("bumps the patch for fixes", func() {
			env.commit("fix: bug")

			Expect(env.run()).To(Equal(errutil.ExitSuccess))
			Expect(env.stdout.String()).To(Equal("1.0.1\n"))
		})

		It("bumps the major for breaking changes", func() {
			env.commit("feat!: drop support")

			Expect(env.run()).To(Equal(errutil.ExitSuccess))
			Expect(env.stdout.String()).To(Equal("2.0.0\n"))
		})

		It("presents complex json", func() {
			env.commit("feat: second")
			sha := env.git("rev-parse", "HEAD")

			Expect(env.run(
				"--presentation-kind", "complex",
				"--presentation-parts", "Version,Branch,CommitSha",
				"--presentation-view", "json",
			)).To(Equal(errutil.ExitSuccess))

			var got map[string]string
			Expect(json.Unmarshal(env.stdout.Bytes(), &got)).To(Succeed())
			Expect(got).To(Equal(map[string]string{
				"Version":   "1.1.0",
				"Branch":    "main",
				"CommitSha": sha,
			}))
		})

		It("fails on a duplicate version when asked", func() {
			Expect(env.run("--duplicate-version-fails")).To(Equal(errutil.ExitDuplicateVersion))
			Expect(env.stdout.String()).To(BeEmpty())
		})
	})

	Context("with a configuration file", func() {
		It("applies the branch pre-release", func() {
			env.writeFile("vernuntii.yml", `
branches:
  - branch: "feature/**"
    preRelease: "{branch}"
`)
			env.commit("feat: first")
			env.git("tag", "v1.0.0")
			env.git("checkout", "--quiet", "-b", "feature/login")
			env.commit("feat: login")

			Expect(env.run()).To(Equal(errutil.ExitSuccess))
			Expect(env.stdout.String()).To(Equal("1.1.0-feature-login.1\n"))
		})

		It("rejects unknown keys", func() {
			env.writeFile("vernuntii.yml", "nonsense: 1\n")
			env.commit("feat: first")

			Expect(env.run()).To(Equal(errutil.ExitInvalidConfiguration))
			Expect(env.stderr.String()).To(ContainSubstring("INVALID_CONFIGURATION"))
		})
	})

	It("reports a directory outside any repository", func() {
		env.writeFile("vernuntii.yml", "gitDirectory: /\n")

		Expect(env.run()).NotTo(Equal(errutil.ExitSuccess))
		Expect(env.stderr.String()).To(ContainSubstring("GIT_NOT_REPOSITORY"))
	})
})
