package nativeruntime

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// ENotSupportedError is the error every unsupported-category native
// returns; its abort code is always ENotSupported.
type ENotSupportedError struct {
	Module   string
	Function string
}

func (e *ENotSupportedError) Error() string {
	return fmt.Sprintf("nativeruntime: %s::%s is unsupported (abort code %d)", e.Module, e.Function, ENotSupported)
}

// Table wires the pure native implementations in this package into a
// vmhost.NativeTable, bound to one replay session's mutable state: the
// clock, random generator, event store, owner registry, and dynamic-field
// resolver.
type Table struct {
	Clock         *MockClock
	Random        *MockRandom
	Events        *EventStore
	Owners        *OwnerRegistry
	DynamicFields *DynamicFields
	Gas           GasSchedule

	Runtime *objectruntime.Runtime
	Shared  *objectruntime.Shared
	Fetch   OnDemandFetcher
}

// NewTable constructs a Table with fresh per-session state. gas may be
// nil, in which case NewZeroSchedule is used.
func NewTable(rt *objectruntime.Runtime, shared *objectruntime.Shared, fetch OnDemandFetcher, gas GasSchedule) *Table {
	if gas == nil {
		gas = NewZeroSchedule()
	}
	return &Table{
		Clock:         FrozenClock(DefaultBaseMs),
		Random:        NewRandom(),
		Events:        NewEventStore(),
		Owners:        NewOwnerRegistry(),
		DynamicFields: NewDynamicFields(),
		Gas:           gas,
		Runtime:       rt,
		Shared:        shared,
		Fetch:         fetch,
	}
}

func (t *Table) charge(op string, nBytes int) {
	t.Gas.Charge(op, nBytes)
}

// unsupportedEntryPoints lists the concrete native function names each
// unsupported module exposes (not exhaustive of every on-chain native in
// these modules, but every one a replayed transaction is likely to call).
var unsupportedEntryPoints = map[string][]string{
	"zklogin":           {"check_zklogin_id", "check_zklogin_issuer"},
	"poseidon":          {"poseidon_bn254_internal"},
	"config":            {"read_setting_impl"},
	"nitro_attestation": {"load_nitro_attestation_internal"},
	"funds_accumulator": {"withdraw_from_account_impl", "settle_accumulator_impl"},
}

// Build returns the vmhost.NativeTable a VM host should install for the
// duration of one replay session.
func (t *Table) Build() vmhost.NativeTable {
	nt := make(vmhost.NativeTable)

	nt.Register(sui.StdAddress, "hash", "blake2b256", t.nativeHash(HashBlake2b256))
	nt.Register(sui.StdAddress, "hash", "sha2_256", t.nativeHash(HashSha2256))
	nt.Register(sui.FrameworkAddress, "hash", "sha3_256", t.nativeHash(HashSha3256))
	nt.Register(sui.FrameworkAddress, "hash", "keccak256", t.nativeHash(HashKeccak256))

	nt.Register(sui.FrameworkAddress, "random", "random_internal", t.nativeRandom)
	nt.Register(sui.SystemAddress, "clock", "timestamp_ms", t.nativeClockTimestamp)

	nt.Register(sui.FrameworkAddress, "event", "emit", t.nativeEventEmit)

	nt.Register(sui.FrameworkAddress, "transfer", "transfer_impl", t.nativeTransfer)
	nt.Register(sui.FrameworkAddress, "transfer", "freeze_object_impl", t.nativeFreeze)
	nt.Register(sui.FrameworkAddress, "transfer", "share_object_impl", t.nativeShare)
	nt.Register(sui.FrameworkAddress, "transfer", "receive_impl", t.nativeReceive)

	nt.Register(sui.FrameworkAddress, "dynamic_field", "hash_type_and_key", t.nativeHashTypeAndKey)

	nt.Register(sui.FrameworkAddress, "ed25519", "ed25519_verify", t.nativeEd25519Verify)
	nt.Register(sui.FrameworkAddress, "ecdsa_k1", "secp256k1_verify", t.nativeSecp256k1Verify)
	nt.Register(sui.FrameworkAddress, "ecdsa_k1", "secp256k1_ecrecover", t.nativeSecp256k1Recover)
	nt.Register(sui.FrameworkAddress, "ecdsa_r1", "secp256r1_verify", t.nativeSecp256r1Verify)
	nt.Register(sui.FrameworkAddress, "bls12381", "bls12381_min_sig_verify", t.nativeBLS12381MinSigVerify)
	nt.Register(sui.FrameworkAddress, "bls12381", "bls12381_min_pk_verify", t.nativeBLS12381MinPkVerify)
	nt.Register(sui.FrameworkAddress, "bls12381", "bls12381_aggregate_verify", t.nativeBLS12381AggregateVerify)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_add", t.nativeBLS12381G1Add)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_sub", t.nativeBLS12381G1Sub)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_mul", t.nativeBLS12381G1ScalarMul)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_div", t.nativeBLS12381G1Div)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_multi_scalar_mul", t.nativeBLS12381G1MultiScalarMul)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_hash_to_curve", t.nativeBLS12381G1HashToCurve)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_g1_sum", t.nativeBLS12381G1Sum)
	nt.Register(sui.FrameworkAddress, "group_ops", "bls12381_pairing", t.nativeBLS12381Pairing)
	nt.Register(sui.FrameworkAddress, "groth16", "verify_groth16_proof_internal_bls12381", t.nativeVerifyGroth16BLS12381)
	nt.Register(sui.FrameworkAddress, "groth16", "verify_groth16_proof_internal_bn254", t.nativeVerifyGroth16BN254)

	for module, fns := range unsupportedEntryPoints {
		for _, fn := range fns {
			nt.Register(sui.FrameworkAddress, module, fn, t.nativeUnsupported(module, fn))
		}
	}

	return nt
}

func (t *Table) nativeHash(h func([]byte) []byte) vmhost.NativeFunc {
	return func(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("nativeruntime: hash native expects 1 argument, got %d", len(args))
		}
		data, err := args[0].Bytes()
		if err != nil {
			return nil, err
		}
		t.charge("hash", len(data))
		return []vmhost.Value{vmhost.NewValue(h(data))}, nil
	}
}

func (t *Table) nativeRandom(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	t.charge("random", 32)
	return []vmhost.Value{vmhost.NewValue(t.Random.NextBytes(32))}, nil
}

func (t *Table) nativeClockTimestamp(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	t.charge("clock_timestamp_ms", 8)
	ts := t.Clock.TimestampMs()
	return []vmhost.Value{vmhost.NewValue(uint64ToLEBytes(ts))}, nil
}

func (t *Table) nativeEventEmit(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("nativeruntime: event::emit expects (type_tag_string, data)")
	}
	typeTagBytes, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	data, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	t.charge("event_emit", len(data))
	t.Events.Emit(string(typeTagBytes), data)
	return nil, nil
}

func (t *Table) nativeTransfer(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("nativeruntime: transfer_impl expects (object_bytes, recipient)")
	}
	obj, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	recipientBytes, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	recipient, err := addressFromBytes(recipientBytes)
	if err != nil {
		return nil, err
	}
	t.charge("transfer_impl", len(obj))
	if _, err := t.Owners.TransferImpl(obj, recipient); err != nil {
		return nil, err
	}
	return nil, nil
}

func (t *Table) nativeFreeze(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("nativeruntime: freeze_object_impl expects (object_bytes)")
	}
	obj, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	t.charge("freeze_object_impl", len(obj))
	if _, err := t.Owners.FreezeObjectImpl(obj); err != nil {
		return nil, err
	}
	return nil, nil
}

func (t *Table) nativeShare(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("nativeruntime: share_object_impl expects (object_bytes, initial_version)")
	}
	obj, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	verBytes, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	t.charge("share_object_impl", len(obj))
	if _, err := t.Owners.ShareObjectImpl(obj, leBytesToUint64(verBytes)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (t *Table) nativeReceive(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("nativeruntime: receive_impl expects (parent, child)")
	}
	if len(typeArgs) != 1 {
		return nil, fmt.Errorf("nativeruntime: receive_impl<T> expects exactly one type argument, got %d", len(typeArgs))
	}
	parentBytes, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	childBytes, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	parent, err := addressFromBytes(parentBytes)
	if err != nil {
		return nil, err
	}
	child, err := addressFromBytes(childBytes)
	if err != nil {
		return nil, err
	}
	t.charge("receive_impl", sui.AddressLength*2)
	bytes, _, err := t.Owners.ReceiveImpl(parent, child, typeArgs[0])
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(bytes)}, nil
}

func (t *Table) nativeHashTypeAndKey(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("nativeruntime: hash_type_and_key expects (parent, key_bytes)")
	}
	if len(typeArgs) != 1 {
		return nil, fmt.Errorf("nativeruntime: hash_type_and_key<K> expects exactly one type argument, got %d", len(typeArgs))
	}
	parentBytes, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	keyBytes, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	parent, err := addressFromBytes(parentBytes)
	if err != nil {
		return nil, err
	}
	t.charge("dynamic_field_hash_base", len(keyBytes))
	childID := t.DynamicFields.HashTypeAndKey(t.Runtime, t.Shared, t.Fetch, parent, typeArgs[0], keyBytes)
	return []vmhost.Value{vmhost.NewValue(childID[:])}, nil
}

func encodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func (t *Table) nativeEd25519Verify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("nativeruntime: ed25519_verify expects (pubkey, msg, sig)")
	}
	pubkey, msg, sig, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	t.charge("ed25519_verify", len(msg))
	return []vmhost.Value{vmhost.NewValue(encodeBool(Ed25519Verify(pubkey, msg, sig)))}, nil
}

func (t *Table) nativeSecp256k1Verify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("nativeruntime: secp256k1_verify expects (pubkey, msg, sig, hash_scheme)")
	}
	pubkey, msg, sig, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	scheme, err := byteArg(args[3])
	if err != nil {
		return nil, err
	}
	t.charge("secp256k1_verify", len(msg))
	return []vmhost.Value{vmhost.NewValue(encodeBool(Secp256k1Verify(pubkey, msg, sig, int(scheme))))}, nil
}

func (t *Table) nativeSecp256k1Recover(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("nativeruntime: secp256k1_ecrecover expects (sig, msg, hash_scheme)")
	}
	sigBytes, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	msgBytes, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	scheme, err := byteArg(args[2])
	if err != nil {
		return nil, err
	}
	t.charge("secp256k1_ecrecover", len(msgBytes))
	pubkey, code, ok := Secp256k1Recover(sigBytes, msgBytes, int(scheme))
	return []vmhost.Value{
		vmhost.NewValue(pubkey),
		vmhost.NewValue([]byte{byte(code)}),
		vmhost.NewValue(encodeBool(ok)),
	}, nil
}

func (t *Table) nativeSecp256r1Verify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("nativeruntime: secp256r1_verify expects (pubkey_x, pubkey_y, msg, sig, hash_scheme)")
	}
	pubX, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	pubY, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	msg, err := args[2].Bytes()
	if err != nil {
		return nil, err
	}
	sig, err := args[3].Bytes()
	if err != nil {
		return nil, err
	}
	scheme, err := byteArg(args[4])
	if err != nil {
		return nil, err
	}
	t.charge("secp256r1_verify", len(msg))
	ok := Secp256r1Verify(new(big.Int).SetBytes(pubX), new(big.Int).SetBytes(pubY), msg, sig, int(scheme))
	return []vmhost.Value{vmhost.NewValue(encodeBool(ok))}, nil
}

func (t *Table) nativeBLS12381MinSigVerify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("nativeruntime: bls12381_min_sig_verify expects (pubkey, msg, sig)")
	}
	pubkey, msg, sig, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	t.charge("bls12381_min_sig_verify", len(msg))
	return []vmhost.Value{vmhost.NewValue(encodeBool(BLS12381MinSigVerify(pubkey, msg, sig)))}, nil
}

func (t *Table) nativeBLS12381MinPkVerify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("nativeruntime: bls12381_min_pk_verify expects (pubkey, msg, sig)")
	}
	pubkey, msg, sig, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	t.charge("bls12381_min_pk_verify", len(msg))
	return []vmhost.Value{vmhost.NewValue(encodeBool(BLS12381MinPkVerify(pubkey, msg, sig)))}, nil
}

func (t *Table) nativeBLS12381AggregateVerify(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("nativeruntime: bls12381_aggregate_verify expects (pubkeys, msgs, agg_sig)")
	}
	pubkeysRaw, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	msgsRaw, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	aggSig, err := args[2].Bytes()
	if err != nil {
		return nil, err
	}
	pubkeys, err := decodeByteVectors(pubkeysRaw)
	if err != nil {
		return nil, err
	}
	msgs, err := decodeByteVectors(msgsRaw)
	if err != nil {
		return nil, err
	}
	t.charge("bls12381_aggregate_verify", len(aggSig))
	ok, err := BLS12381AggregateVerify(pubkeys, msgs, aggSig)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(encodeBool(ok))}, nil
}

func (t *Table) nativeBLS12381G1Add(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	a, b, err := bytes2(args)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_add", len(a)+len(b))
	out, err := BLS12381G1Add(a, b)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1Sub(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	a, b, err := bytes2(args)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_sub", len(a)+len(b))
	out, err := BLS12381G1Sub(a, b)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1ScalarMul(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	point, scalarBytes, err := bytes2(args)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_mul", len(point))
	out, err := BLS12381G1ScalarMul(point, new(big.Int).SetBytes(scalarBytes))
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1Div(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	point, scalarBytes, err := bytes2(args)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_div", len(point))
	out, err := BLS12381G1Div(point, new(big.Int).SetBytes(scalarBytes))
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1MultiScalarMul(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("nativeruntime: bls12381_g1_multi_scalar_mul expects (points, scalars)")
	}
	pointsRaw, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	scalarsRaw, err := args[1].Bytes()
	if err != nil {
		return nil, err
	}
	points, err := decodeByteVectors(pointsRaw)
	if err != nil {
		return nil, err
	}
	scalarBytesList, err := decodeByteVectors(scalarsRaw)
	if err != nil {
		return nil, err
	}
	scalars := make([]*big.Int, len(scalarBytesList))
	for i, sb := range scalarBytesList {
		scalars[i] = new(big.Int).SetBytes(sb)
	}
	t.charge("group_ops_multi_scalar_mul", len(points))
	out, err := BLS12381G1MultiScalarMul(points, scalars)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1HashToCurve(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("nativeruntime: bls12381_g1_hash_to_curve expects (msg)")
	}
	msg, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_hash_to_curve", len(msg))
	out, err := BLS12381G1HashToCurve(msg)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381G1Sum(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("nativeruntime: bls12381_g1_sum expects (points)")
	}
	pointsRaw, err := args[0].Bytes()
	if err != nil {
		return nil, err
	}
	points, err := decodeByteVectors(pointsRaw)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_sum", len(points))
	out, err := BLS12381G1Sum(points)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeBLS12381Pairing(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	g1, g2, err := bytes2(args)
	if err != nil {
		return nil, err
	}
	t.charge("group_ops_pairing", len(g1)+len(g2))
	out, err := BLS12381Pairing(g1, g2)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(out)}, nil
}

func (t *Table) nativeVerifyGroth16BLS12381(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	vkBytes, proofBytes, publicBytes, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	vk, proof, witness, err := decodeGroth16BLS12381(vkBytes, proofBytes, publicBytes)
	if err != nil {
		return nil, err
	}
	t.charge("groth16_verify_bls12381", len(proofBytes))
	ok, err := VerifyGroth16BLS12381(vk, proof, witness)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(encodeBool(ok))}, nil
}

func (t *Table) nativeVerifyGroth16BN254(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
	vkBytes, proofBytes, publicBytes, err := bytes3(args)
	if err != nil {
		return nil, err
	}
	vk, proof, witness, err := decodeGroth16BN254(vkBytes, proofBytes, publicBytes)
	if err != nil {
		return nil, err
	}
	t.charge("groth16_verify_bn254", len(proofBytes))
	ok, err := VerifyGroth16BN254(vk, proof, witness)
	if err != nil {
		return nil, err
	}
	return []vmhost.Value{vmhost.NewValue(encodeBool(ok))}, nil
}

func byteArg(v vmhost.Value) (byte, error) {
	b, err := v.Bytes()
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, fmt.Errorf("nativeruntime: expected a 1-byte argument, got 0 bytes")
	}
	return b[0], nil
}

func bytes2(args []vmhost.Value) (a, b []byte, err error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("nativeruntime: native expects 2 arguments, got %d", len(args))
	}
	a, err = args[0].Bytes()
	if err != nil {
		return nil, nil, err
	}
	b, err = args[1].Bytes()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func bytes3(args []vmhost.Value) (a, b, c []byte, err error) {
	if len(args) != 3 {
		return nil, nil, nil, fmt.Errorf("nativeruntime: native expects 3 arguments, got %d", len(args))
	}
	a, err = args[0].Bytes()
	if err != nil {
		return nil, nil, nil, err
	}
	b, err = args[1].Bytes()
	if err != nil {
		return nil, nil, nil, err
	}
	c, err = args[2].Bytes()
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

func (t *Table) nativeUnsupported(module, function string) vmhost.NativeFunc {
	return func(ctx context.Context, typeArgs []sui.TypeTag, args []vmhost.Value) ([]vmhost.Value, error) {
		t.charge("unsupported", 0)
		return nil, &ENotSupportedError{Module: module, Function: function}
	}
}

func addressFromBytes(b []byte) (sui.Address, error) {
	if len(b) < sui.AddressLength {
		return sui.Address{}, ErrObjectIDTooShort
	}
	var a sui.Address
	copy(a[:], b[:sui.AddressLength])
	return a, nil
}

func uint64ToLEBytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

func leBytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
