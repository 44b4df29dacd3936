package code_analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const appSource = `import React from 'react';
import Header from './components/Header';

export default function App() {
  return (
    <div className="app">
      <Header />
      <h1>Welcome</h1>
      <button onClick={() => {}}>Sign in</button>
    </div>
  );
}
`

const headerSource = `import { Link } from 'react-router-dom';

const Header = () => {
  return (
    <header>
      <nav>
        <Link to="/">Home</Link>
      </nav>
    </header>
  );
};

export default Header;
`

const vendoredButtonSource = `import * as React from "react"
import { Slot } from "@radix-ui/react-slot"

const Button = React.forwardRef((props, ref) => <Slot ref={ref} {...props} />)
export { Button }
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}
