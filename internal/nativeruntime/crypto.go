package nativeruntime

import (
	"bytes"
	stdecdsa "crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	blsfr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	blsgroth16 "github.com/consensys/gnark-crypto/ecc/bls12-381/groth16"
	bngroth16 "github.com/consensys/gnark-crypto/ecc/bn254/groth16"
	decredsecp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	blst "github.com/supranational/blst/bindings/go"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/Giulio2002/bls"
)

// Recovery status codes returned alongside a recovered pubkey by the
// secp256k1 ecrecover native: recovery failure = 0, invalid
// signature = 1, invalid pubkey = 2.
const (
	RecoveryFailed        = 0
	RecoveryInvalidSig    = 1
	RecoveryInvalidPubkey = 2
)

// HashSchemeKeccak and HashSchemeSHA256 select the message-digest variant
// Sui's ecdsa_k1/ecdsa_r1 natives accept.
const (
	HashSchemeKeccak = 0
	HashSchemeSHA256 = 1
)

// HashBlake2b256 implements hash::blake2b256.
func HashBlake2b256(data []byte) []byte {
	h := blake2b.Sum256(data)
	return h[:]
}

// HashKeccak256 implements hash::keccak256.
func HashKeccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// HashSha2256 implements hash::sha2_256.
func HashSha2256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// HashSha3256 implements hash::sha3_256.
func HashSha3256(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

func digestFor(scheme int, msg []byte) []byte {
	if scheme == HashSchemeSHA256 {
		return HashSha2256(msg)
	}
	return HashKeccak256(msg)
}

// Ed25519Verify implements ed25519::ed25519_verify.
func Ed25519Verify(pubkey, msg, sig []byte) bool {
	if len(pubkey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), msg, sig)
}

// Secp256k1Verify implements ecdsa_k1's non-recoverable verify entry
// point, compressed-pubkey form.
func Secp256k1Verify(pubkey, msg, sig []byte, scheme int) bool {
	pk, err := decredsecp.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := digestFor(scheme, msg)
	return signature.Verify(digest, pk)
}

// Secp256k1Recover implements ecdsa_k1::secp256k1_ecrecover: recovers a
// compressed public key from a 65-byte recoverable signature. ok is false
// with a recovery status code when recovery is not possible; the pubkey
// is only meaningful when ok is true.
func Secp256k1Recover(sig, msg []byte, scheme int) (pubkey []byte, code int, ok bool) {
	if len(sig) != 65 {
		return nil, RecoveryInvalidSig, false
	}
	digest := digestFor(scheme, msg)
	pk, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return nil, RecoveryFailed, false
	}
	return pk.SerializeCompressed(), 0, true
}

// Secp256r1Verify implements ecdsa_r1's verify entry point using the
// standard library's P-256 implementation (the same verified elliptic
// curve math Sui's fastcrypto wraps).
func Secp256r1Verify(pubkeyX, pubkeyY *big.Int, msg, sig []byte, scheme int) bool {
	pub := &stdecdsa.PublicKey{Curve: elliptic.P256(), X: pubkeyX, Y: pubkeyY}
	r, s := splitFixedSignature(sig)
	if r == nil {
		return false
	}
	digest := digestFor(scheme, msg)
	return stdecdsa.Verify(pub, digest, r, s)
}

func splitFixedSignature(sig []byte) (r, s *big.Int) {
	if len(sig) != 64 {
		return nil, nil
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:])
	return r, s
}

// bls12381DST is the domain-separation tag Sui's bls12381 natives use
// for hash-to-curve during signature verification.
var bls12381DST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// BLS12381MinSigVerify implements bls12381::bls12381_min_sig_verify:
// signature in G1 (48 bytes compressed), public key in G2 (96 bytes
// compressed).
func BLS12381MinSigVerify(pubkey, msg, sig []byte) bool {
	var sigPoint blst.P1Affine
	if sigPoint.Uncompress(sig) == nil {
		return false
	}
	var pkPoint blst.P2Affine
	if pkPoint.Uncompress(pubkey) == nil {
		return false
	}
	return sigPoint.Verify(true, &pkPoint, true, msg, bls12381DST)
}

// BLS12381MinPkVerify implements bls12381::bls12381_min_pk_verify:
// signature in G2 (96 bytes compressed), public key in G1 (48 bytes
// compressed).
func BLS12381MinPkVerify(pubkey, msg, sig []byte) bool {
	var sigPoint blst.P2Affine
	if sigPoint.Uncompress(sig) == nil {
		return false
	}
	var pkPoint blst.P1Affine
	if pkPoint.Uncompress(pubkey) == nil {
		return false
	}
	return sigPoint.Verify(true, &pkPoint, true, msg, bls12381DST)
}

// BLS12381AggregateVerify verifies an aggregated min-sig signature
// against multiple messages using the secondary Giulio2002/bls library
// alone; no blst verification is run alongside it, so the two
// libraries' results are not compared.
func BLS12381AggregateVerify(pubkeys [][]byte, msgs [][]byte, aggSig []byte) (bool, error) {
	return bls.VerifyAggregate(pubkeys, msgs, aggSig)
}

// Group operation error codes: invalid curve element or too many inputs.
const (
	ErrGroupOpInvalidInput = 1
	ErrGroupOpTooManyInputs = 2
)

const maxMultiScalarMulInputs = 32

// BLS12381G1Add implements group_ops::add for the BLS12-381 G1 group,
// via gnark-crypto's curve arithmetic.
func BLS12381G1Add(a, b []byte) ([]byte, error) {
	var pa, pb bls12381.G1Affine
	if _, err := pa.SetBytes(a); err != nil {
		return nil, err
	}
	if _, err := pb.SetBytes(b); err != nil {
		return nil, err
	}
	var jac, jb bls12381.G1Jac
	jac.FromAffine(&pa)
	jb.FromAffine(&pb)
	jac.AddAssign(&jb)
	var out bls12381.G1Affine
	out.FromJacobian(&jac)
	bytes := out.Bytes()
	return bytes[:], nil
}

// BLS12381G1ScalarMul implements group_ops::scalar_mul for G1.
func BLS12381G1ScalarMul(point []byte, scalar *big.Int) ([]byte, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(point); err != nil {
		return nil, err
	}
	var out bls12381.G1Affine
	out.ScalarMultiplication(&p, scalar)
	bytes := out.Bytes()
	return bytes[:], nil
}

// BLS12381G1MultiScalarMul implements group_ops::multi_scalar_mul for G1,
// bounded to maxMultiScalarMulInputs terms.
func BLS12381G1MultiScalarMul(points [][]byte, scalars []*big.Int) ([]byte, error) {
	if len(points) != len(scalars) {
		return nil, errGroupOp(ErrGroupOpInvalidInput)
	}
	if len(points) > maxMultiScalarMulInputs {
		return nil, errGroupOp(ErrGroupOpTooManyInputs)
	}
	affines := make([]bls12381.G1Affine, len(points))
	for i, p := range points {
		if _, err := affines[i].SetBytes(p); err != nil {
			return nil, err
		}
	}
	var acc bls12381.G1Jac
	for i := range affines {
		var term bls12381.G1Affine
		term.ScalarMultiplication(&affines[i], scalars[i])
		var termJac bls12381.G1Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	bytes := out.Bytes()
	return bytes[:], nil
}

// BLS12381Pairing implements group_ops::pairing.
func BLS12381Pairing(g1 []byte, g2 []byte) ([]byte, error) {
	var p1 bls12381.G1Affine
	var p2 bls12381.G2Affine
	if _, err := p1.SetBytes(g1); err != nil {
		return nil, err
	}
	if _, err := p2.SetBytes(g2); err != nil {
		return nil, err
	}
	result, err := bls12381.Pair([]bls12381.G1Affine{p1}, []bls12381.G2Affine{p2})
	if err != nil {
		return nil, err
	}
	bytes := result.Bytes()
	return bytes[:], nil
}

// BLS12381G1Sub implements group_ops::sub for the BLS12-381 G1 group: a
// plus the negation of b.
func BLS12381G1Sub(a, b []byte) ([]byte, error) {
	var pa, pb bls12381.G1Affine
	if _, err := pa.SetBytes(a); err != nil {
		return nil, err
	}
	if _, err := pb.SetBytes(b); err != nil {
		return nil, err
	}
	var negB bls12381.G1Affine
	negB.Neg(&pb)
	var jac, jNeg bls12381.G1Jac
	jac.FromAffine(&pa)
	jNeg.FromAffine(&negB)
	jac.AddAssign(&jNeg)
	var out bls12381.G1Affine
	out.FromJacobian(&jac)
	bytes := out.Bytes()
	return bytes[:], nil
}

// BLS12381G1Div implements group_ops::div for the BLS12-381 G1 group: a
// scalar-mul by the modular inverse of scalar over the curve's scalar
// field. Returns errGroupOp(ErrGroupOpInvalidInput) when scalar has no
// inverse (i.e. it's a multiple of the field modulus).
func BLS12381G1Div(point []byte, scalar *big.Int) ([]byte, error) {
	inv := new(big.Int).ModInverse(scalar, blsfr.Modulus())
	if inv == nil {
		return nil, errGroupOp(ErrGroupOpInvalidInput)
	}
	return BLS12381G1ScalarMul(point, inv)
}

// BLS12381G1HashToCurve implements group_ops::hash_to_curve for the
// BLS12-381 G1 group, using the same domain-separation tag as the
// bls12381 signature-verification natives.
func BLS12381G1HashToCurve(msg []byte) ([]byte, error) {
	p, err := bls12381.HashToG1(msg, bls12381DST)
	if err != nil {
		return nil, err
	}
	bytes := p.Bytes()
	return bytes[:], nil
}

// BLS12381G1Sum implements group_ops::sum for the BLS12-381 G1 group:
// the unweighted sum of every point, bounded to maxMultiScalarMulInputs
// terms like multi_scalar_mul.
func BLS12381G1Sum(points [][]byte) ([]byte, error) {
	if len(points) == 0 {
		return nil, errGroupOp(ErrGroupOpInvalidInput)
	}
	if len(points) > maxMultiScalarMulInputs {
		return nil, errGroupOp(ErrGroupOpTooManyInputs)
	}
	var acc bls12381.G1Jac
	for _, raw := range points {
		var aff bls12381.G1Affine
		if _, err := aff.SetBytes(raw); err != nil {
			return nil, err
		}
		var jac bls12381.G1Jac
		jac.FromAffine(&aff)
		acc.AddAssign(&jac)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	bytes := out.Bytes()
	return bytes[:], nil
}

func errGroupOp(code int) error {
	return &groupOpError{code: code}
}

type groupOpError struct{ code int }

func (e *groupOpError) Error() string {
	if e.code == ErrGroupOpTooManyInputs {
		return "nativeruntime: group op received too many inputs"
	}
	return "nativeruntime: group op received invalid input"
}

// VerifyGroth16BLS12381 implements groth16::verify_groth16_proof_internal
// for the BLS12-381 curve.
func VerifyGroth16BLS12381(vk blsgroth16.VerifyingKey, proof blsgroth16.Proof, publicInputs bls12381fr) (bool, error) {
	err := blsgroth16.Verify(&proof, &vk, publicInputs)
	return err == nil, err
}

// VerifyGroth16BN254 implements groth16::verify_groth16_proof_internal
// for the BN254 curve.
func VerifyGroth16BN254(vk bngroth16.VerifyingKey, proof bngroth16.Proof, publicInputs bn254fr) (bool, error) {
	err := bngroth16.Verify(&proof, &vk, publicInputs)
	return err == nil, err
}

// bls12381fr and bn254fr are thin aliases naming the witness type each
// curve's Verify expects, keeping the exported signatures above readable
// without importing the *.fr packages into every caller.
type bls12381fr = blsgroth16.Witness
type bn254fr = bngroth16.Witness

// decodeGroth16BLS12381 deserializes a verifying key, proof, and public
// witness from their gnark-crypto wire encodings for the BLS12-381 curve.
func decodeGroth16BLS12381(vkBytes, proofBytes, publicBytes []byte) (blsgroth16.VerifyingKey, blsgroth16.Proof, bls12381fr, error) {
	var vk blsgroth16.VerifyingKey
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return vk, blsgroth16.Proof{}, nil, err
	}
	var proof blsgroth16.Proof
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return vk, proof, nil, err
	}
	var witness bls12381fr
	if _, err := witness.ReadFrom(bytes.NewReader(publicBytes)); err != nil {
		return vk, proof, nil, err
	}
	return vk, proof, witness, nil
}

// decodeGroth16BN254 is decodeGroth16BLS12381's BN254 counterpart.
func decodeGroth16BN254(vkBytes, proofBytes, publicBytes []byte) (bngroth16.VerifyingKey, bngroth16.Proof, bn254fr, error) {
	var vk bngroth16.VerifyingKey
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return vk, bngroth16.Proof{}, nil, err
	}
	var proof bngroth16.Proof
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return vk, proof, nil, err
	}
	var witness bn254fr
	if _, err := witness.ReadFrom(bytes.NewReader(publicBytes)); err != nil {
		return vk, proof, nil, err
	}
	return vk, proof, witness, nil
}
