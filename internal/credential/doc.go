// Package credential owns the SwitchBot token/secret pair and whether it
// has been proven against the cloud.
//
// State moves Unset → Testing → Validated, or Testing → Invalid. A new pair
// is persisted before it is probed, so the cloud client signs the probe
// with it; if the probe fails the previous state is restored by value,
// including its validated flag and the persisted keys. When there was no
// previous pair the keys are deleted and the state returns to Unset.
//
// Validation, TestStored and Clear are serialized: a second call waits for
// the first to finish instead of racing it on the store.
package credential
