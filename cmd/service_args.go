package cmd

import (
	"time"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/isometry/convai-webhook/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack serviceMode)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
		Env:         helpers.Ptr("PORT"),
	},
	&config.Service.Path: {
		Name:        "service-host-path",
		Description: "The path to serve the webhook on",
		Short:       helpers.Ptr("P"),
	},
}

var svcEnvMapInt = map[*int]boundEnvVar[int]{
	&config.Service.RateLimit.PerMinute: {
		Name:        "service-rate-limit",
		Description: "The number of requests per minute allowed per client (0 disables rate limiting)",
	},
	&config.Service.RateLimit.Burst: {
		Name:        "service-rate-limit-burst",
		Description: "The request burst allowed per client (default a tenth of the rate limit)",
	},
}

var svcEnvMapInt64 = map[*int64]boundEnvVar[int64]{
	&config.Service.MaxBodyBytes: {
		Name:        "service-max-body-bytes",
		Description: "The maximum accepted request body size (0 disables the limit)",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations",
		Short:       helpers.Ptr("t"),
	},
}
