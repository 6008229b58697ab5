package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("user_message", "thread_id", "t-1")

			Expect(buf.String()).To(ContainSubstring("user_message"))
			Expect(buf.String()).To(ContainSubstring("thread_id=t-1"))
		})

		It("filters debug records unless debug is enabled", func() {
			var quiet, loud bytes.Buffer
			logger.New(logger.WithWriter(&quiet)).Debug("hidden")
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)).Debug("shown")

			Expect(quiet.String()).To(BeEmpty())
			Expect(loud.String()).To(ContainSubstring("shown"))
		})

		It("writes JSON records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("assistant_reply", "total_latency", 1.25)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("assistant_reply"))
			Expect(parsed["total_latency"]).To(BeNumerically("==", 1.25))
		})

		It("writes pretty records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("serving")

			Expect(buf.String()).To(ContainSubstring("serving"))
		})

		It("writes to every writer", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("both")

			Expect(a.String()).To(ContainSubstring("both"))
			Expect(b.String()).To(ContainSubstring("both"))
		})

		It("keeps attributes bound with With", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.With("component", "retrieval").Warn("search failed")

			parsed := decodeLine(&buf)
			Expect(parsed["component"]).To(Equal("retrieval"))
			Expect(parsed["level"]).To(Equal("WARN"))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() { l.With("k", "v").WithGroup("g").Error("msg") }).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var a, b bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&a)), logger.New(logger.WithWriter(&b)))
			multi.Info("broadcast")

			Expect(a.String()).To(ContainSubstring("broadcast"))
			Expect(b.String()).To(ContainSubstring("broadcast"))
		})

		It("respects each handler's level", func() {
			var a, b bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&a), logger.WithDebug(true)),
				logger.New(logger.WithWriter(&b)),
			)
			multi.Debug("detail")

			Expect(a.String()).To(ContainSubstring("detail"))
			Expect(b.String()).To(BeEmpty())
		})

		It("carries groups to children", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))
			multi.WithGroup("request").Info("processed", "stage", "pricing")

			parsed := decodeLine(&buf)
			group, ok := parsed["request"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["stage"]).To(Equal("pricing"))
		})

		It("skips nil loggers", func() {
			Expect(func() { logger.Multi(nil, logger.Nop()).Info("x") }).NotTo(Panic())
		})
	})
})
