package nn

// The engine differentiates only Add, Mul and Relu, so losses are
// computed in closed form here and fed back as seed gradients.

// SquaredErrorLoss is sum((pred-y)^2) over the outputs.
func SquaredErrorLoss(y, pred []float64) float64 {
	if len(y) != len(pred) {
		panic("nn: prediction and target lengths differ")
	}
	loss := 0.0
	for i := range y {
		diff := pred[i] - y[i]
		loss += diff * diff
	}
	return loss
}

// SquaredErrorGradient is the seed gradient of SquaredErrorLoss/2 with
// respect to each prediction: pred - y.
func SquaredErrorGradient(y, pred []float64) []float64 {
	if len(y) != len(pred) {
		panic("nn: prediction and target lengths differ")
	}
	grads := make([]float64, len(y))
	for i := range y {
		grads[i] = pred[i] - y[i]
	}
	return grads
}

// OneHot encodes a class label as a target vector of the given width.
func OneHot(label, classes int) []float64 {
	if label < 0 || label >= classes {
		panic("nn: label out of range")
	}
	y := make([]float64, classes)
	y[label] = 1
	return y
}
