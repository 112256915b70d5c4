package glm

// Defaults for the fit configuration. The Hessian solve tolerance is the
// historically permissive value; see WithHessianSolveTolerance.
const (
	DefaultMaxIterations     = 100000
	DefaultGradientTolerance = 1e-8
	DefaultHessianSolveTol   = 1e-24
)

type config struct {
	maxIterations int
	gradTol       float64
	hessTol       float64
	termNames     []string
	cancel        func() error
}

func defaultConfig() config {
	return config{
		maxIterations: DefaultMaxIterations,
		gradTol:       DefaultGradientTolerance,
		hessTol:       DefaultHessianSolveTol,
	}
}

// Option configures a fit.
type Option func(*config)

// WithMaxIterations caps the number of optimizer iterations.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		c.maxIterations = n
	}
}

// WithGradientTolerance sets the gradient-norm convergence tolerance.
func WithGradientTolerance(tol float64) Option {
	return func(c *config) {
		c.gradTol = tol
	}
}

// WithHessianSolveTolerance sets the reciprocal-condition-number threshold
// below which the Hessian is treated as singular and the covariance marked
// unavailable. The default of 1e-24 is very permissive and can pass
// genuinely singular matrices off as merely ill-conditioned; callers who
// care should set something like 1e-12.
func WithHessianSolveTolerance(tol float64) Option {
	return func(c *config) {
		c.hessTol = tol
	}
}

// WithTermNames sets the display names of the design-matrix columns, in
// column order and excluding the intercept. Defaults to x1..xk.
func WithTermNames(names ...string) Option {
	return func(c *config) {
		c.termNames = names
	}
}

// WithCancel installs a cooperative cancellation hook, checked once per
// optimizer iteration. Returning a non-nil error stops the fit.
func WithCancel(cancel func() error) Option {
	return func(c *config) {
		c.cancel = cancel
	}
}
