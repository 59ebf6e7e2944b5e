package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	setenv := func(key, value string) {
		if value == "" {
			GinkgoT().Setenv(key, "")
			Expect(os.Unsetenv(key)).To(Succeed())
			return
		}
		GinkgoT().Setenv(key, value)
	}

	AfterEach(func() {
		Reload()
	})

	DescribeTable("level",
		func(level, testMode string, expected slog.Level) {
			setenv(envLogLevel, level)
			setenv(envTestMode, testMode)

			Expect(getLogLevel()).To(Equal(expected))
		},
		Entry("debug", "DEBUG", "", slog.LevelDebug),
		Entry("warn", "WARN", "", slog.LevelWarn),
		Entry("explicit level wins over test mode", "ERROR", "true", slog.LevelError),
		Entry("lowercase is not a level", "debug", "", slog.LevelInfo),
		Entry("unknown level in test mode", "LOUD", "true", slog.LevelError),
		Entry("unset in production", "", "", slog.LevelInfo),
	)

	It("should discard output in test mode", func() {
		setenv(envTestMode, "true")
		Expect(getLogOutput()).To(Equal(io.Discard))

		setenv(envTestMode, "false")
		Expect(getLogOutput()).To(BeIdenticalTo(os.Stderr))
	})

	It("should prefer the environment over the default", func() {
		setenv("REDIX_PROBE", "value")
		Expect(getEnvWithDefault("REDIX_PROBE", "fallback")).To(Equal("value"))

		setenv("REDIX_PROBE", "")
		Expect(getEnvWithDefault("REDIX_PROBE", "fallback")).To(Equal("fallback"))
	})

	It("should apply a new level on Reload", func() {
		setenv(envTestMode, "true")
		setenv(envLogLevel, "WARN")
		Reload()

		Expect(defaultLogger.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
		Expect(defaultLogger.Enabled(ctx, slog.LevelWarn)).To(BeTrue())

		setenv(envLogLevel, "DEBUG")
		Reload()

		Expect(defaultLogger.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
	})

	It("should build child loggers sharing the handler", func() {
		setenv(envTestMode, "true")
		setenv(envLogLevel, "ERROR")
		Reload()

		child := With("topology", "cluster")
		Expect(child).NotTo(BeNil())
		Expect(child.Enabled(ctx, slog.LevelWarn)).To(BeFalse())
		Expect(child.Enabled(ctx, slog.LevelError)).To(BeTrue())
	})

	It("should write package level calls through the default logger", func() {
		var out bytes.Buffer
		defaultLogger = slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))

		Debug("hidden")
		Info("hidden")
		Warn("replica marked unhealthy", "endpoint", "10.0.0.2:6379")
		Error("role mismatch")

		Expect(out.String()).NotTo(ContainSubstring("hidden"))
		Expect(out.String()).To(ContainSubstring("level=WARN msg=\"replica marked unhealthy\" endpoint=10.0.0.2:6379"))
		Expect(out.String()).To(ContainSubstring("level=ERROR msg=\"role mismatch\""))
	})
})
