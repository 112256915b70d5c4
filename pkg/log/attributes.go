// Standard attribute keys for model-fitting log records. Using fixed keys
// keeps records filterable when several fits run in one process.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "BinomialGLM".
	ModelNameKey = "model.name"

	// LinkKey identifies the link function in use, e.g. "Logit" or "Probit".
	LinkKey = "model.link"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "predict_proba".
	OperationKey = "ml.operation"
)

// Data shape.
const (
	// SamplesKey is the number of observations (rows).
	SamplesKey = "data.samples"

	// FeaturesKey is the number of predictor columns, excluding the intercept.
	FeaturesKey = "data.features"
)

// Optimizer progress.
const (
	// IterationsKey is the number of optimizer iterations performed.
	IterationsKey = "opt.iterations"

	// GradNormKey is the Euclidean norm of the gradient at termination.
	GradNormKey = "opt.grad_norm"

	// StatusKey is the optimizer's terminal status string.
	StatusKey = "opt.status"

	// NegLogLikKey is the negative log-likelihood at the returned iterate.
	NegLogLikKey = "opt.neg_loglik"
)
