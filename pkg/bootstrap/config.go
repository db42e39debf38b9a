package bootstrap

import (
	"crypto/ed25519"
	"time"

	"github.com/divvyexchange/bootstrap/pkg/config"
	"github.com/divvyexchange/bootstrap/pkg/config/env"
	"github.com/divvyexchange/bootstrap/pkg/config/memory"
	"github.com/divvyexchange/bootstrap/pkg/config/wrapper"
)

const (
	envConfigPrefix = "BOOTSTRAP_"

	DisableSubmissionConfigEnvName = envConfigPrefix + "DISABLE_SUBMISSION"
	defaultDisableSubmission       = false

	VerifyStateConfigEnvName = envConfigPrefix + "VERIFY_STATE"
	defaultVerifyState       = true

	VerifyPollIntervalConfigEnvName = envConfigPrefix + "VERIFY_POLL_INTERVAL"
	defaultVerifyPollInterval       = 500 * time.Millisecond

	TokenDecimalsConfigEnvName = envConfigPrefix + "TOKEN_DECIMALS"
	defaultTokenDecimals       = 6

	StableMintConfigEnvName = envConfigPrefix + "STABLE_MINT"

	FoundationOwnerConfigEnvName = envConfigPrefix + "FOUNDATION_OWNER"
)

type conf struct {
	disableSubmission  config.Bool
	verifyState        config.Bool
	verifyPollInterval config.Duration
	tokenDecimals      config.Uint64
	stableMint         config.PublicKey
	foundationOwner    config.PublicKey
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			disableSubmission:  env.NewBoolConfig(DisableSubmissionConfigEnvName, defaultDisableSubmission),
			verifyState:        env.NewBoolConfig(VerifyStateConfigEnvName, defaultVerifyState),
			verifyPollInterval: env.NewDurationConfig(VerifyPollIntervalConfigEnvName, defaultVerifyPollInterval),
			tokenDecimals:      env.NewUint64Config(TokenDecimalsConfigEnvName, defaultTokenDecimals),
			stableMint:         env.NewPublicKeyConfig(StableMintConfigEnvName, nil),
			foundationOwner:    env.NewPublicKeyConfig(FoundationOwnerConfigEnvName, nil),
		}
	}
}

type testOverrides struct {
	disableSubmission bool
	skipVerification  bool
	tokenDecimals     uint64
	stableMint        ed25519.PublicKey
	foundationOwner   ed25519.PublicKey
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			disableSubmission:  wrapper.NewBoolConfig(memory.NewConfig(overrides.disableSubmission), defaultDisableSubmission),
			verifyState:        wrapper.NewBoolConfig(memory.NewConfig(!overrides.skipVerification), defaultVerifyState),
			verifyPollInterval: wrapper.NewDurationConfig(memory.NewConfig(time.Duration(0)), defaultVerifyPollInterval),
			tokenDecimals:      wrapper.NewUint64Config(memory.NewOptionalConfig(overrides.tokenDecimals), defaultTokenDecimals),
			stableMint:         wrapper.NewPublicKeyConfig(memory.NewOptionalConfig(overrides.stableMint), nil),
			foundationOwner:    wrapper.NewPublicKeyConfig(memory.NewOptionalConfig(overrides.foundationOwner), nil),
		}
	}
}
