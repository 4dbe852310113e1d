package pay10

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"strings"

	"paydash/pkg/payment/types"
)

// ivSize 网关约定 IV 取密钥字符串的前 16 个字节
const ivSize = aes.BlockSize

// newBlock 密钥字符串的 UTF-8 字节直接作为 AES 密钥，长度决定 AES-128/192/256
func newBlock(key string) (cipher.Block, []byte, error) {
	keyBytes := []byte(key)
	if len(keyBytes) < ivSize {
		return nil, nil, fmt.Errorf("%w: key shorter than %d bytes", types.ErrDecrypt, ivSize)
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrDecrypt, err)
	}
	return block, keyBytes[:ivSize], nil
}

// Decrypt 解密 ENCDATA（base64 编码的 AES-CBC 密文，PKCS#7 填充）
func Decrypt(encdata, key string) (string, error) {
	block, iv, err := newBlock(key)
	if err != nil {
		return "", err
	}

	// 表单提交时 + 可能被还原成空格
	encrypted, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(encdata), " ", "+"))
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", types.ErrDecrypt, err)
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of the block size", types.ErrDecrypt, len(encrypted))
	}

	plain := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, encrypted)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Encrypt 按网关同样的约定加密，返回 base64 密文
func Encrypt(plaintext, key string) (string, error) {
	block, iv, err := newBlock(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func pkcs7Pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", types.ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", types.ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
