// Package trainer provides high-level training orchestration for recognizer models.
// It drives epochs of train and test steps over datasets, trains one fresh model
// per k-fold split and selects the fold whose model validates best.
package trainer
