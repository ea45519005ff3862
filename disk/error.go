package disk

import "fmt"

type BlockOutOfRangeError struct {
	block int
	count int
}

func (e *BlockOutOfRangeError) Error() string {
	return fmt.Sprintf("block %d out of range for device of %d blocks", e.block, e.count)
}

func NewBlockOutOfRangeError(block, count int) *BlockOutOfRangeError {
	return &BlockOutOfRangeError{
		block: block,
		count: count,
	}
}

type BufferSizeError struct {
	size int
}

func (e *BufferSizeError) Error() string {
	return fmt.Sprintf("buffer of %d bytes is not one block of %d bytes", e.size, BlockSize)
}

func NewBufferSizeError(size int) *BufferSizeError {
	return &BufferSizeError{
		size: size,
	}
}

type InvalidSizeError struct {
	size int64
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("device size %d is not a positive multiple of the block size %d", e.size, BlockSize)
}

func NewInvalidSizeError(size int64) *InvalidSizeError {
	return &InvalidSizeError{
		size: size,
	}
}

// IncompleteTransferError a block read or write moved fewer than BlockSize bytes
type IncompleteTransferError struct {
	block int
	n     int
	err   error
}

func (e *IncompleteTransferError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("transferred %d of %d bytes of block %d: %v", e.n, BlockSize, e.block, e.err)
	}
	return fmt.Sprintf("transferred %d of %d bytes of block %d", e.n, BlockSize, e.block)
}

func (e *IncompleteTransferError) Unwrap() error {
	return e.err
}

func NewIncompleteTransferError(block, n int, err error) *IncompleteTransferError {
	return &IncompleteTransferError{
		block: block,
		n:     n,
		err:   err,
	}
}
