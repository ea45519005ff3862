package ecs150

// span one block's share of a byte-range transfer
type span struct {
	// step how many blocks past the one holding the starting offset
	step int
	// blockOffset where in the block the transfer starts
	blockOffset int
	// length bytes moved in this block
	length int
	// bufOffset where in the caller's buffer this block's bytes go
	bufOffset int
}

// planSpans splits the byte range [offset, offset+count) into per-block spans:
// a first block that may start mid-block, full interior blocks and a trailing partial block.
func planSpans(offset uint32, count int) []span {
	if count <= 0 {
		return nil
	}
	var spans []span
	blockOffset := int(offset % BlockSize)
	for done, step := 0, 0; done < count; step++ {
		length := BlockSize - blockOffset
		if left := count - done; length > left {
			length = left
		}
		spans = append(spans, span{
			step:        step,
			blockOffset: blockOffset,
			length:      length,
			bufOffset:   done,
		})
		done += length
		blockOffset = 0
	}
	return spans
}
