// Package classifier turns feature vectors into phishing verdicts.
//
// The package defines the Classifier capability consumed by the pipeline
// and the HTTP handler, plus three implementations:
//
//   - LinearModel: a logistic model whose weights are read from YAML and
//     keyed by published feature names. A baseline model is embedded in
//     the binary so the tool works without a trained file.
//   - RemoteClassifier: forwards the vector to an external model server
//     as a single-row instances payload.
//   - Func: adapts a plain function, mostly for tests.
//
// Training is out of scope; models are produced elsewhere and loaded here.
package classifier
