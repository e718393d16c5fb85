package rating

// Option applies a configuration option to the PlackettLuce model.
type Option func(*PlackettLuce)

// WithMu sets the prior skill mean.
func WithMu(mu float64) Option {
	return func(m *PlackettLuce) {
		m.mu = mu
	}
}

// WithSigma sets the prior uncertainty. Negative values are ignored.
func WithSigma(sigma float64) Option {
	return func(m *PlackettLuce) {
		if sigma >= 0 {
			m.sigma = sigma
		}
	}
}

// WithZ sets how many standard deviations the ordinal subtracts from mu.
func WithZ(z int) Option {
	return func(m *PlackettLuce) {
		if z > 0 {
			m.z = z
		}
	}
}

// WithTau sets the additive dynamics factor applied to sigma before a rating update.
func WithTau(tau float64) Option {
	return func(m *PlackettLuce) {
		if tau >= 0 {
			m.tau = tau
		}
	}
}

// WithBeta sets the performance spread of a single comparison. It is
// independent of the prior sigma. Non-positive values are ignored.
func WithBeta(beta float64) Option {
	return func(m *PlackettLuce) {
		if beta > 0 {
			m.beta = beta
		}
	}
}
